// Package api exposes the subtitle pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz          liveness check
//	POST /transcribe       {audio_path, transcript_id?} -> utterances
//	POST /segment          {utterances} -> sentences
//	POST /render           {subtitle_data, video_width, video_height, format?} -> document
//	POST /embed_subtitle   {subtitle_data, video_path} -> published video URL
//
// Successful responses carry {"status":"success"}. Failures carry
// {"status":"error","error_type","error_message"} and an HTTP status chosen
// by services.HTTPStatus from the error's marker, so validation problems
// surface as 400 and provider or ffmpeg failures as 502.
//
// Every request gets a correlation ID (X-Request-ID is honoured when the
// caller supplies one) which is attached to the request context and to
// every log line emitted while serving it.
package api
