// Package bot implements the chat side of the accountability loop: the
// authorization gate, the command and inline-action handlers, and the
// scheduled trigger handlers. It owns no transport; replies go through a
// Notifier and all state lives in an injected progress.Store.
package bot
