// Package testsupport builds throwaway configs and stores for package tests.
package testsupport
