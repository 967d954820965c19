package topplays

import (
	"context"
	"errors"
	"testing"

	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/testutils"
)

func Test_wrapTopPlaysOperation_Variants(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(ctx context.Context) (TopPlaysOperationResult, error)
		wantErr  bool
		wantKind string
	}{
		{
			name: "fn error",
			fn: func(context.Context) (TopPlaysOperationResult, error) {
				return TopPlaysOperationResult{}, errors.New("boom")
			},
			wantErr: true, wantKind: "operation_error",
		},
		{
			name: "result error",
			fn: func(context.Context) (TopPlaysOperationResult, error) {
				return TopPlaysOperationResult{Error: errors.New("bad")}, nil
			},
			wantKind: "result_error",
		},
		{
			name:    "panic",
			fn:      func(context.Context) (TopPlaysOperationResult, error) { panic("kaboom") },
			wantErr: true, wantKind: "panic",
		},
		{
			name: "success",
			fn: func(context.Context) (TopPlaysOperationResult, error) {
				return TopPlaysOperationResult{Success: "ok"}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kinds []string
			requests := 0
			metrics := &testutils.FakeDiscordMetrics{
				RecordAPIErrorFunc:   func(_ context.Context, _, kind string) { kinds = append(kinds, kind) },
				RecordAPIRequestFunc: func(context.Context, string) { requests++ },
			}

			_, err := wrapTopPlaysOperation(context.Background(), "op", tt.fn, testutils.NoOpLogger(), nil, metrics)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantKind == "" {
				if len(kinds) != 0 || requests != 1 {
					t.Errorf("kinds = %v, requests = %d", kinds, requests)
				}
				return
			}
			if len(kinds) != 1 || kinds[0] != tt.wantKind {
				t.Errorf("kinds = %v, want [%s]", kinds, tt.wantKind)
			}
		})
	}
}

func Test_wrapTopPlaysOperation_NilFn(t *testing.T) {
	res, err := wrapTopPlaysOperation(context.Background(), "nil_fn", nil, nil, nil, nil)
	if err != nil || res.Error == nil {
		t.Fatalf("expected result.Error for nil fn, got err=%v res=%v", err, res)
	}
}
