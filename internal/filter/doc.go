// Package filter holds the predicates shared by filtering and search.
package filter
