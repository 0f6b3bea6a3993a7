// Package backend is a client for the ingestion and chat service that hosts a
// user's bots: knowledge ingestion, bot listing and deletion, usage stats, chat
// and Telegram channel registration.
//
// Authenticated calls send the configured bearer token as is. The token is
// never inspected here.
package backend
