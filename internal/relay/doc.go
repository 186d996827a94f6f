// Package relay routes support conversations between users and one admin.
//
// # Flows
//
// Router.Handle dispatches three kinds of platform events:
//
//   - Start: a user sent /start. The bot greets them with YES/NO buttons.
//   - Callback: a button was pressed. "no" closes the conversation, "yes"
//     notifies the admin and records the request, "reply_<id>" (admin only)
//     selects the user the admin's next message goes to.
//   - Text: free text. Only the configured admin's text is handled; it is
//     forwarded to the selected user and recorded.
//
// # Side effects
//
// Each outbound call or store write is a named step with its own timeout.
// Steps are independent unless one is a precondition of the next (a reply
// that was not delivered is not recorded). Every step outcome is logged,
// reported to the Observer and returned in Result.
//
// # Failure model
//
// Users never see backend errors. Malformed button data is ignored, a panic
// in one handler is recovered, and duplicate update IDs are dropped when a
// dedupe cache is configured.
package relay
