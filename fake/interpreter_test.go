package fake

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/momentics/hioload-affine/affinity"
)

func TestInterpreter_Builtins(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	in, err := NewInterpreter()
	if err != nil {
		t.Fatal(err)
	}
	out, err := in.Call("heavy_computation", 3, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	total, err := in.Call("sum", out)
	if err != nil || total != 9.0 {
		t.Fatalf("sum = %v,%v", total, err)
	}
	if _, err := in.Call("fail", "x"); !errors.Is(err, ErrRaised) {
		t.Errorf("fail err = %v", err)
	}
	if _, err := in.Call("heavy_computation", "big"); !errors.Is(err, ErrBadArgs) {
		t.Errorf("bad args err = %v", err)
	}
	if _, err := in.Call("missing"); !errors.Is(err, ErrNoFunction) {
		t.Errorf("missing err = %v", err)
	}
	if err := in.Define("double", func(args ...any) (any, error) { return args[0].(int) * 2, nil }); err != nil {
		t.Fatal(err)
	}
	if v, _ := in.Call("double", 21); v != 42 {
		t.Errorf("double = %v", v)
	}
	if in.Calls() != 5 {
		t.Errorf("calls = %d", in.Calls())
	}
}

func TestInterpreter_RejectsForeignThread(t *testing.T) {
	if !affinity.Supported() {
		t.Skip("thread ids not available on this platform")
	}
	created := make(chan *Interpreter)
	closeIt := make(chan struct{})
	closed := make(chan error)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		in, _ := NewInterpreter()
		created <- in
		<-closeIt
		closed <- in.Close()
	}()
	in := <-created

	if _, err := in.Call("sum", Ones(1)); !errors.Is(err, ErrWrongThread) {
		t.Errorf("foreign call err = %v, want ErrWrongThread", err)
	}
	if err := in.Close(); !errors.Is(err, ErrWrongThread) {
		t.Errorf("foreign close err = %v, want ErrWrongThread", err)
	}

	close(closeIt)
	if err := <-closed; err != nil {
		t.Fatal(err)
	}
	if !in.Closed() || in.ReleaseThread() != in.OwnerThread() {
		t.Errorf("release thread %d, owner %d", in.ReleaseThread(), in.OwnerThread())
	}
	if _, err := in.Call("sum", Ones(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("call after close err = %v", err)
	}
}

func TestMatrix(t *testing.T) {
	if r, c := Ones(4).Shape(); r != 4 || c != 4 {
		t.Errorf("shape = %dx%d", r, c)
	}
	if r, c := Matrix(nil).Shape(); r != 0 || c != 0 {
		t.Errorf("empty shape = %dx%d", r, c)
	}
	if s := Ones(0).Sum(); s != 0 {
		t.Errorf("empty sum = %v", s)
	}
}
