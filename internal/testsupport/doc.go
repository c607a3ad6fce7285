// Package testsupport holds helpers shared by package tests: isolated
// configs, stub binaries on PATH, sample media files and an opened
// transcript cache.
package testsupport
