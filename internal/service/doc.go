// Package service contains the application's business operations: signup
// and signin, profile updates, group lifecycle and join-request moderation,
// and the review feed. Services own transaction boundaries and translate
// between the API layer and the stores.
package service
