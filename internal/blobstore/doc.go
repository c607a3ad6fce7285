// Package blobstore publishes rendered videos and returns the URL clients
// fetch them from.
//
// Two backends are provided: S3-compatible object storage through minio-go,
// and a plain directory tree for single-host deployments. New picks one from
// the [storage] config section.
package blobstore
