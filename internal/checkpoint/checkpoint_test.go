package checkpoint

import (
	"context"
	"testing"
)

func TestNopCheckpointerIsInert(t *testing.T) {
	var c Checkpointer = NopCheckpointer{}
	id, err := c.Save(context.Background(), "before write_to_file")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := c.Restore(context.Background(), id); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}
