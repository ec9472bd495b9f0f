package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/okian/roster/pkg/logger"
)

// checkHealth verifies the service is running.
func checkHealth(ctx context.Context, c *HTTPClient) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.expect(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, &body); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%w: health status %q", ErrPropertyViolated, body.Status)
	}
	return nil
}

// createConcurrently posts every payload from a worker pool and checks the
// assigned ids are pairwise distinct.
func createConcurrently(ctx context.Context, cfg *Config, c *HTTPClient, inputs []memberInput, stats *Stats) ([]member, error) {
	workers := max(1, min(cfg.Workers, len(inputs)))
	logger.Get().Info(ctx, "creating members", logger.Int("members", len(inputs)), logger.Int("workers", workers))

	type job struct {
		index int
		input memberInput
	}

	var (
		created  = make([]member, len(inputs))
		ok       = make([]bool, len(inputs))
		failed   atomic.Int64
		firstErr error
		errOnce  sync.Once
		wg       sync.WaitGroup
	)

	jobs := make(chan job, workers*WorkerChannelMultiplier)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				var m member
				if err := c.expect(ctx, http.MethodPost, "/members", j.input, http.StatusCreated, &m); err != nil {
					failed.Add(1)
					errOnce.Do(func() { firstErr = err })
					continue
				}
				created[j.index] = m
				ok[j.index] = true
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, in := range inputs {
			select {
			case <-ctx.Done():
				return
			case jobs <- job{index: i, input: in}:
			}
		}
	}()
	wg.Wait()

	out := make([]member, 0, len(inputs))
	for i, m := range created {
		if ok[i] {
			out = append(out, m)
		}
	}
	stats.MembersCreated = len(out)
	stats.CreateFailures = int(failed.Load())

	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("create members: %w", err)
	}
	if firstErr != nil {
		return out, fmt.Errorf("create members: %d failed: %w", stats.CreateFailures, firstErr)
	}

	seen := make(map[int]int, len(out))
	for i, m := range out {
		if m.ID < 1 {
			return out, fmt.Errorf("%w: created member has id %d", ErrPropertyViolated, m.ID)
		}
		if prev, dup := seen[m.ID]; dup {
			return out, fmt.Errorf("%w: id %d assigned to %q and %q", ErrPropertyViolated, m.ID, out[prev].Name, m.Name)
		}
		seen[m.ID] = i
	}
	return out, nil
}

// checkRoundTrip reads m back and compares every field.
func checkRoundTrip(ctx context.Context, c *HTTPClient, m member) error {
	var got member
	if err := c.expect(ctx, http.MethodGet, memberPath(m.ID), nil, http.StatusOK, &got); err != nil {
		return err
	}
	if got != m {
		return fmt.Errorf("%w: round trip of %d: got %+v, want %+v", ErrPropertyViolated, m.ID, got, m)
	}
	return nil
}

// checkPatchKeepsFields patches only bio and expects the rest untouched.
func checkPatchKeepsFields(ctx context.Context, c *HTTPClient, m member) error {
	want := m
	want.Bio = "patched by smoke"

	var got member
	if err := c.expect(ctx, http.MethodPatch, memberPath(m.ID), map[string]string{"bio": want.Bio}, http.StatusOK, &got); err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: patch of %d: got %+v, want %+v", ErrPropertyViolated, m.ID, got, want)
	}

	if err := c.expect(ctx, http.MethodPatch, memberPath(m.ID), map[string]string{}, http.StatusOK, &got); err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: empty patch of %d changed it to %+v", ErrPropertyViolated, m.ID, got)
	}
	return nil
}

// checkUpsert PUTs an absent id twice: the first creates, the second replaces.
func checkUpsert(ctx context.Context, c *HTTPClient, id int, in memberInput) error {
	if err := checkNotFound(ctx, c, id); err != nil {
		return fmt.Errorf("upsert target %d: %w", id, err)
	}

	var got member
	if err := c.expect(ctx, http.MethodPut, memberPath(id), in, http.StatusCreated, &got); err != nil {
		return err
	}
	if got.ID != id {
		return fmt.Errorf("%w: PUT %d created id %d", ErrPropertyViolated, id, got.ID)
	}

	in.Name += "-replaced"
	if err := c.expect(ctx, http.MethodPut, memberPath(id), in, http.StatusOK, &got); err != nil {
		return err
	}
	if got.ID != id || got.Name != in.Name {
		return fmt.Errorf("%w: PUT %d replaced to %+v", ErrPropertyViolated, id, got)
	}
	return nil
}

// checkDeleteIdempotent deletes id twice and expects it gone.
func checkDeleteIdempotent(ctx context.Context, c *HTTPClient, id int) error {
	for i := 0; i < 2; i++ {
		resp, err := c.do(ctx, http.MethodDelete, memberPath(id), nil)
		if err != nil {
			return err
		}
		if resp.status != http.StatusNoContent || len(resp.body) != 0 {
			return fmt.Errorf("%w: DELETE %d attempt %d: status %d, %d body bytes",
				ErrPropertyViolated, id, i+1, resp.status, len(resp.body))
		}
	}
	return checkNotFound(ctx, c, id)
}

// checkNotFound expects the not-found contract for id.
func checkNotFound(ctx context.Context, c *HTTPClient, id int) error {
	var body errorBody
	if err := c.expect(ctx, http.MethodGet, memberPath(id), nil, http.StatusNotFound, &body); err != nil {
		return err
	}
	if body.Code != "not_found" || body.Message == "" {
		return fmt.Errorf("%w: not-found body %+v", ErrPropertyViolated, body)
	}
	return nil
}

// checkEmptyRejected posts {} and expects every required field reported.
func checkEmptyRejected(ctx context.Context, c *HTTPClient) error {
	var errs map[string][]string
	if err := c.expect(ctx, http.MethodPost, "/members", map[string]string{}, http.StatusBadRequest, &errs); err != nil {
		return err
	}
	var missing []error
	for _, f := range requiredFields {
		msgs := errs[f]
		if len(msgs) != 1 || msgs[0] != msgMissing {
			missing = append(missing, fmt.Errorf("%s: %v", f, msgs))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: empty create: %w", ErrPropertyViolated, errors.Join(missing...))
	}
	return nil
}
