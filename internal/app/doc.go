// Package app is the application layer every front end routes through.
//
// A Service exposes the five catalogue operations on top of the shared store.
// Each operation is instrumented with two notifiers: a one-line summary on the
// book_updates channel and a detailed diagnostic on admin_notifications.
// Front ends get one Service each so notifications name their origin.
package app
