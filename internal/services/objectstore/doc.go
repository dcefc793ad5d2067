// Package objectstore publishes local files at URLs an offline recognition
// backend can fetch. The directory-backed store copies files into a
// web-served directory and builds public or HMAC-signed URLs under a
// configured base.
package objectstore
