// Package app runs the publication loop.
//
// Poster executes one tick (topic read, suppression, votecount build, render,
// publish with retry). Loop owns the schedule, reloads settings before every
// tick and never runs two ticks at once.
package app
