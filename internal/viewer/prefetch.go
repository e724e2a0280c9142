package viewer

import (
	"context"
	"sync"
)

// Neighbors returns the prefetch candidates around center in priority
// order: for each distance d from 1 to count, center+d then center-d,
// skipping indices outside [0, n).
func Neighbors(center, n, count int) []int {
	var out []int
	for d := 1; d <= count; d++ {
		if center+d < n {
			out = append(out, center+d)
		}
		if center-d >= 0 {
			out = append(out, center-d)
		}
	}
	return out
}

// Batches splits indices into consecutive groups of at most size.
func Batches(indices []int, size int) [][]int {
	if size < 1 {
		size = 1
	}
	var out [][]int
	for start := 0; start < len(indices); start += size {
		end := min(start+size, len(indices))
		out = append(out, indices[start:end])
	}
	return out
}

// FetchAndCache loads the slide at index into the cache. It does nothing
// when index is out of range, already cached, or already being fetched.
// Failures are logged and leave no cache entry; the returned error is for
// callers that want it.
func (s *Session) FetchAndCache(ctx context.Context, index int) error {
	if !s.sequence().Valid(index) {
		return nil
	}
	done, owner, cached := s.claim(index)
	if cached || !owner {
		return nil
	}
	return s.runFetch(ctx, index, done)
}

// PreloadAdjacent warms the cache around center. Candidates are fetched in
// batches of at most MaxConcurrentPreloads; each batch settles before the
// next one starts.
func (s *Session) PreloadAdjacent(ctx context.Context, center int) {
	seq := s.sequence()
	if !seq.Valid(center) {
		return
	}
	candidates := Neighbors(center, seq.Len(), s.opts.PreloadCount)
	for _, batch := range Batches(candidates, s.opts.MaxConcurrentPreloads) {
		if ctx.Err() != nil {
			return
		}
		var wg sync.WaitGroup
		for _, index := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s.FetchAndCache(ctx, i)
			}(index)
		}
		wg.Wait()
	}
}

// claim registers index as in flight unless it is cached or another fetch
// already owns it. The check and the registration happen under one lock.
func (s *Session) claim(index int) (done chan struct{}, owner, cached bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache.Get(s.seq.At(index)); ok {
		return nil, false, true
	}
	if ch, ok := s.inflight[index]; ok {
		return ch, false, false
	}
	ch := make(chan struct{})
	s.inflight[index] = ch
	return ch, true, false
}

func (s *Session) runFetch(ctx context.Context, index int, done chan struct{}) error {
	file := s.sequence().At(index)
	defer func() {
		s.mu.Lock()
		delete(s.inflight, index)
		s.mu.Unlock()
		close(done)
	}()

	markup, err := s.backend.FetchSlide(ctx, s.project, file)
	if err != nil {
		s.opts.Logf("viewer: fetching %s/%s failed: %v", s.project, file, err)
		return err
	}
	s.cache.Add(file, InjectBaseURL(markup, AssetBase(s.project)))
	return nil
}

// load makes index available in the cache for display, waiting on a fetch
// already in flight instead of starting a second one.
func (s *Session) load(ctx context.Context, index int) error {
	done, owner, cached := s.claim(index)
	switch {
	case cached:
		return nil
	case owner:
		return s.runFetch(ctx, index, done)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if _, ok := s.cache.Get(s.sequence().At(index)); ok {
		return nil
	}
	return ErrSlideUnavailable
}

// InFlight reports whether index is currently being fetched.
func (s *Session) InFlight(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[index]
	return ok
}

// Markup returns the markup of the slide at index, fetching it if it is
// not cached yet.
func (s *Session) Markup(ctx context.Context, index int) (string, error) {
	if !s.sequence().Valid(index) {
		return "", ErrSlideUnavailable
	}
	if err := s.load(ctx, index); err != nil {
		return "", err
	}
	markup, ok := s.Cached(index)
	if !ok {
		return "", ErrSlideUnavailable
	}
	return markup, nil
}
