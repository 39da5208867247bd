package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushPopOrder(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	ctx := context.Background()
	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop(ctx)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New[string]()
	result := make(chan string, 1)
	go func() {
		v, ok := q.Pop(context.Background())
		require.True(t, ok)
		result <- v
	}()

	select {
	case <-result:
		t.Fatal("Pop returned before Push")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push("hi")
	select {
	case v := <-result:
		require.Equal(t, "hi", v)
	case <-time.After(time.Second):
		t.Fatal("Pop never returned after Push")
	}
}

func TestPopRespectsContext(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := q.Pop(ctx)
	require.False(t, ok)
}

func TestCloseDrainsThenEnds(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Close()

	v, ok := q.Pop(context.Background())
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = q.Pop(context.Background())
	require.False(t, ok)
}

func TestPushAfterCloseIsNoop(t *testing.T) {
	q := New[int]()
	q.Close()
	q.Push(1)

	_, ok := q.Pop(context.Background())
	require.False(t, ok)
}
