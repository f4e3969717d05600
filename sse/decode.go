package sse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/watsonx"
)

const readSize = 32 * 1024

// Decode drives dec over r until EOF, handing each fragment to h before the
// next chunk is read. It always returns the outcome accumulated so far; the
// error is non-nil when the handler failed, the context ended or the read
// failed. A stream that ends without a terminal marker, including one cut
// off by an unexpected EOF, is not an error.
func Decode(ctx context.Context, r io.Reader, dec LineDecoder, h watsonx.FragmentHandler) (watsonx.StreamOutcome, error) {
	var asm Assembler
	buf := make([]byte, readSize)
	for {
		if err := ctx.Err(); err != nil {
			return dec.Finalize(), err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			for _, line := range asm.Feed(buf[:n]) {
				if err := feed(ctx, dec, h, line); err != nil {
					return dec.Finalize(), err
				}
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			if err := ctx.Err(); err != nil {
				return dec.Finalize(), err
			}
			// A connection dropped mid-body is a truncated stream.
			if errors.Is(readErr, io.ErrUnexpectedEOF) {
				break
			}
			return dec.Finalize(), fmt.Errorf("read stream: %w", readErr)
		}
	}
	if line, ok := asm.Flush(); ok {
		if err := feed(ctx, dec, h, line); err != nil {
			return dec.Finalize(), err
		}
	}
	return dec.Finalize(), nil
}

func feed(ctx context.Context, dec LineDecoder, h watsonx.FragmentHandler, line string) error {
	f, ok := dec.FeedLine(line)
	if !ok {
		return nil
	}
	return h.HandleFragment(ctx, f)
}
