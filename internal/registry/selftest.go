package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/helix-ai/helix/internal/planner"
)

// runBoundedSelfTest executes a planner self-test on its own goroutine and
// joins it with a hard timeout. A hung test cannot block registration
// beyond the timeout; the abandoned goroutine finishes in the background.
// Panics inside the test are captured as failures.
func runBoundedSelfTest(ctx context.Context, tester planner.SelfTester, timeout time.Duration) error {
	testCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("self-test panicked: %v", r)
			}
		}()
		done <- tester.SelfTest(testCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-testCtx.Done():
		return fmt.Errorf("self-test timed out after %s: %w", timeout, testCtx.Err())
	}
}
