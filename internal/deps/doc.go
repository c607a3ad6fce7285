// Package deps reports whether the external tools subburn shells out to are
// installed and capable enough.
package deps
