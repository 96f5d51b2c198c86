// Package review decides when to nudge the user for an app review.
//
// Gate listens for completed alarms and, once enough of them accumulated and
// enough time passed since the previous nudge, enqueues a suppressible
// review banner. It never blocks an alarm flow.
package review
