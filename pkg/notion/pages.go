package notion

import "context"

// FetchFunc returns one batch of items starting at cursor, plus the cursor of
// the next batch ("" when exhausted).
type FetchFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// Pager walks a cursor-paginated query from the start. It is lazy (one fetch
// per Next) and restartable from the first page, which is all the resume
// support the Notion API offers.
type Pager[T any] struct {
	fetch  FetchFunc[T]
	cursor string
	done   bool
}

func NewPager[T any](fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Next returns the next batch. ok is false once the sequence is exhausted.
func (p *Pager[T]) Next(ctx context.Context) (batch []T, ok bool, err error) {
	if p.done {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	batch, next, err := p.fetch(ctx, p.cursor)
	if err != nil {
		return nil, false, err
	}
	p.cursor = next
	if next == "" {
		p.done = true
	}
	return batch, true, nil
}

// Reset rewinds the pager to the first page.
func (p *Pager[T]) Reset() {
	p.cursor = ""
	p.done = false
}

// All drains the pager, honoring ctx cancellation between batches.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		batch, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, batch...)
	}
}
