// Package queue provides the prioritised dispatch queue between the watcher
// and the worker pool. Entries order by (priority, seq) so failed and
// incomplete videos are served before fresh discoveries while equal
// priorities keep FIFO arrival order. A pending set integrated with the
// queue coalesces duplicate discoveries: a path stays pending from enqueue
// until its worker reports completion.
package queue
