package browser

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go-openclaw-highlighter/internal/locator"

	"github.com/playwright-community/playwright-go"
)

// scrollScript brings the last card into view so the site renders the next
// batch of lazily loaded cards.
const scrollScript = `(selectors) => {
  for (const sel of selectors) {
    const cards = document.querySelectorAll(sel);
    if (cards.length) { cards[cards.length - 1].scrollIntoView({ block: 'end' }); return cards.length; }
  }
  window.scrollBy(0, window.innerHeight / 2);
  return 0;
}`

// RandomDelay waits between min and max milliseconds, or until ctx is done.
func RandomDelay(ctx context.Context, min, max int) error {
	d := min
	if max > min {
		d = rand.Intn(max-min+1) + min
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(d) * time.Millisecond):
		return nil
	}
}

// ScrollCards scrolls the card list steps times with human-like pauses and
// returns how many cards were on the page after the last step.
func ScrollCards(ctx context.Context, pg playwright.Page, cards locator.Locator, steps int) (int, error) {
	count := 0
	for i := 0; i < steps; i++ {
		res, err := pg.Evaluate(scrollScript, selectors(cards))
		if err != nil {
			return count, fmt.Errorf("failed to scroll card list: %w", err)
		}
		//numbers come back from the driver as float64 or int
		switch v := res.(type) {
		case float64:
			count = int(v)
		case int:
			count = v
		}
		if err := RandomDelay(ctx, 500, 1500); err != nil {
			return count, err
		}
	}
	return count, nil
}
