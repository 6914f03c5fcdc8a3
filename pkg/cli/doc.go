// Package cli provides the langmgr command-line interface.
//
// # Overview
//
// Every command reads its configuration from LANGMGR_* environment variables
// (see package config), builds the G2P registry from the built-in engines and
// the engine directories, and loads language descriptors from a file or a
// database.
//
// # Commands
//
// list: Show registered G2P engines
//
//	langmgr list
//	langmgr list -json
//
// languages: Show configured languages and whether their engine resolves
//
//	LANGMGR_LANGUAGES_FILE=languages.yaml langmgr languages
//
// convert: Convert words for one language, or every language when -lang is empty
//
//	langmgr convert -lang ja さくら はな
//
// serve: Start the HTTP API (see package api)
//
//	LANGMGR_WATCH=true langmgr serve -addr :8080
package cli
