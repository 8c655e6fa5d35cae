package canvas

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/canvas/engine"
	"github.com/gogpu/canvas/engine/enginetest"
)

func TestWithEngine(t *testing.T) {
	eng := enginetest.New()
	c, err := New(10, 10, WithEngine(eng))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.Engine() != engine.Engine(eng) {
		t.Error("Engine() did not return the engine passed to WithEngine")
	}
}

func TestWithAsync(t *testing.T) {
	c, err := New(10, 10, WithEngine(enginetest.New()), WithAsync(true))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if !c.Async() {
		t.Error("Async() = false, want true")
	}
	c.SetAsync(false)
	if c.Async() {
		t.Error("Async() = true after SetAsync(false)")
	}
}

func TestResolveEngineWithoutRegistration(t *testing.T) {
	for _, name := range engine.Available() {
		t.Skipf("engine %q registered; default resolution is covered elsewhere", name)
	}
	if _, err := New(10, 10); !errors.Is(err, ErrNoEngine) {
		t.Errorf("New() without engines = %v, want ErrNoEngine", err)
	}
}

func TestWithDestination(t *testing.T) {
	var got []string
	d := DestinationFunc(func(_ context.Context, name, mime string, data []byte) error {
		got = append(got, name+" "+mime+" "+string(data))
		return nil
	})
	c, err := New(10, 10, WithEngine(enginetest.New()), WithDestination("mem", d))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if _, err := c.SaveAs("mem://out.png", ExportOptions{}); err != nil {
		t.Fatalf("SaveAs() = %v", err)
	}
	if len(got) != 1 || got[0] != "mem://out.png image/png png:2" {
		t.Errorf("destination writes = %q", got)
	}
}
