// Package store holds the latest poll outcome and fans it out to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [PollRecord]: Storage representation of one poll cycle
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the poller).
package store
