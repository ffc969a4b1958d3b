package runner

// SchedulerState holds the run counters. It is only touched by the goroutine
// running the dispatch loop.
type SchedulerState struct {
	Issued      int64 // requests handed to a worker, never decreases
	InFlight    int64 // issued but not yet completed
	Responses   int64 // completions, used as the response ordinal
	Interrupted bool  // issuance stopped early by cancellation
	Finalized   bool
}

// canIssue reports whether another request fits the window and the budget.
func (s *SchedulerState) canIssue(concurrency, total int64) bool {
	return s.InFlight < concurrency && s.Issued < total
}

// Terminal reports whether nothing more will be issued and nothing is pending.
func (s *SchedulerState) Terminal(total int64) bool {
	return s.InFlight == 0 && (s.Issued >= total || s.Interrupted)
}

func (s *SchedulerState) issue() int64 {
	id := s.Issued
	s.Issued++
	s.InFlight++
	return id
}

// complete frees a slot and returns the response ordinal, starting at 1.
func (s *SchedulerState) complete() int64 {
	s.InFlight--
	s.Responses++
	return s.Responses
}
