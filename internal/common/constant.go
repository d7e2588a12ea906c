// Package common contains shared constants and sentinel errors used across
// account service components.
package common

// SessionCookieName is the cookie that carries the session token on
// browser requests.
const SessionCookieName = "token"
