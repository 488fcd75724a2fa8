// Package notify instruments operations with broadcast notifications.
//
// A Notifier renders a text/template describing an operation's outcome and
// broadcasts it to one channel. Wrap decorates an Operation with a Notifier;
// Stack applies several in decorator order. The wrapped operation's result and
// error are returned untouched: notification failures are logged, never raised.
package notify
