// Package engines provides the built-in G2P factories.
//
// Dictionary: lexicon lookup, one or more pronunciations per word.
// Passthrough: each token is its own syllable; useful for languages whose
// lyrics are already written phonetically.
//
// Configuration keys understood by these engines:
//
//	lowercase  bool    fold input before lookup (dictionary default true, passthrough default false)
//	fallback   string  dictionary only: "none" (default) or "lyric" to echo unknown tokens
package engines
