// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import "time"

// Options configures reader behavior.
type Options struct {
	// RetryDelay controls what a reader does when it reaches the producer's
	// frontier with no committed bytes left to consume:
	//   - negative: nonblock, return ErrWouldBlock immediately
	//   - zero: park until the writer publishes more data (default)
	//   - positive: sleep for the duration and poll again
	RetryDelay time.Duration
}

var defaultOptions = Options{
	RetryDelay: 0, // default: park at the frontier
}

type Option func(*Options)

// WithRetryDelay sets the poll interval used at the frontier instead of
// parking.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock parks the reader at the frontier until the writer publishes
// more data. This is the default.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock makes the reader return ErrWouldBlock at the frontier.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}
