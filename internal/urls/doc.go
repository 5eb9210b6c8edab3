// Package urls holds the documentation links shown in help text and
// troubleshooting tips, so they can be updated in one place.
//
// Usage:
//
//	import "github.com/muurk/rokuctl/internal/urls"
//
//	fmt.Printf("For more information, see: %s\n", urls.ECPReference)
package urls
