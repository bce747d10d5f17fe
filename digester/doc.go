// Package digester keeps SHA256 digests of rendered outputs in companion
// .digest files, so apply_template can leave unchanged outputs untouched
// and keep their modification times stable for build caches.
package digester
