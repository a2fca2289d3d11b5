package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate docs.
//
// @title           jukebot operator API
// @version         0.3.0
// @description     Hedged track-resolution daemon: Lavalink primary, yt-dlp fallback.
//
// @BasePath  /
//
// @schemes http
