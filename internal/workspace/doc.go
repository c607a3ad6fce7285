// Package workspace manages per-job scratch directories for embed runs.
//
// Each job gets a directory named <timestamp>_<short-uuid> under the work
// root holding the fetched source video, the rendered subtitle script and the
// burned output. Remote sources are downloaded over HTTP into the job
// directory; local paths are used in place. CleanStale removes directories left
// behind by crashed or kept jobs.
package workspace
