// Package paint holds the pure rules of the color calendar: what a click on
// a day cell writes, and which palette color each category gets. Nothing in
// here performs I/O; callers persist the returned write intents.
package paint
