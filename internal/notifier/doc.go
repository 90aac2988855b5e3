// Package notifier delivers monitor messages to their destinations.
//
// Every message targets one of two channels: the private operator chat, which receives
// startup and error alerts, or the public broadcast channel, which receives availability
// changes. Telegram serves both channels; Twitter can mirror the broadcast channel; a
// dry-run notifier prints messages instead of sending them.
package notifier
