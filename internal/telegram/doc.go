// Package telegram provides Telegram Bot API integration for sending availability notifications.
//
// The package sends Markdown formatted messages via the Bot API using simple HTTP requests.
// Each message names its destination chat, so one client serves both the private operator
// chat and the public broadcast channel.
//
// Authentication requires a bot token (from @BotFather).
package telegram
