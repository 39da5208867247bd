package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cases := []Message{
		{ID: 0, Sender: "127.0.0.1:9000", Payload: []byte("hi")},
		{ID: 42, Sender: "", Payload: nil},
		{ID: ^uint64(0), Sender: "ünïcödé:1234", Payload: []byte{0, 1, 2, 255}},
	}

	for _, want := range cases {
		buf := Marshal(want)
		got, err := Unmarshal(buf)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestUnmarshalRejectsTruncated(t *testing.T) {
	full := Marshal(Message{ID: 1, Sender: "a", Payload: []byte("payload")})
	for n := 0; n < len(full); n++ {
		_, err := Unmarshal(full[:n])
		require.Error(t, err, "truncated to %d bytes should fail", n)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte{0xFF, 0xFF, 0xFF})
	require.Error(t, err)
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	full := Marshal(Message{ID: 1, Sender: "a", Payload: []byte("p")})
	_, err := Unmarshal(append(full, 0x00))
	require.Error(t, err)
}
