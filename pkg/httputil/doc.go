// Package httputil provides JSON response helpers, request parsing and
// middleware shared by the langmgr HTTP handlers.
package httputil
