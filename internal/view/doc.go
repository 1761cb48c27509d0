// Package view turns the record store into what the log pane shows: the
// records passing the active filter, their level colors and the search
// matches among them.
//
// Filtering hides records; searching only marks them and moves a current
// match with NextMatch and PrevMatch, wrapping at both ends. Rejected
// expressions never replace a working one: the previous filter or search
// stays active and the error is available from InputError.
package view
