package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subject string
	data    []byte
	calls   int
	err     error
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	r.calls++
	r.subject = subject
	r.data = data
	return r.err
}

func TestNATSPublisherPublishesPayload(t *testing.T) {
	conn := &recordingConn{}
	pub := newNATSPublisher(conn, "")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	added := []Triple{
		NewTriple(IRI(ex+"C"), IRI(rdfType), IRI("http://www.w3.org/2002/07/owl#Class")),
		NewTriple(IRI(ex+"C"), IRI(ex+"rank"), Integer(7)),
	}
	require.NoError(t, pub.PublishPatch(context.Background(), ex+"patch", ex+"model", added))

	assert.Equal(t, GraphIngestSubject, conn.subject)

	var got PatchPayload
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, ex+"patch", got.EntityID())
	assert.Equal(t, ex+"model", got.Model)
	require.Len(t, got.Triples(), 2)
	assert.Equal(t, ex+"C", got.Triples()[0].Subject)
	assert.EqualValues(t, 7, got.Triples()[1].Object)
	assert.True(t, got.UpdatedAt.Equal(fixed))
}

func TestNATSPublisherSkipsEmptyAndNil(t *testing.T) {
	conn := &recordingConn{}
	pub := newNATSPublisher(conn, "custom.subject")
	require.NoError(t, pub.PublishPatch(context.Background(), ex+"p", ex+"m", nil))
	assert.Zero(t, conn.calls)

	var nilPub *NATSPublisher
	assert.NoError(t, nilPub.PublishPatch(context.Background(), ex+"p", ex+"m", []Triple{{}}))
}

func TestNATSPublisherWrapsErrors(t *testing.T) {
	conn := &recordingConn{err: errors.New("no responders")}
	pub := newNATSPublisher(conn, "s")
	err := pub.PublishPatch(context.Background(), ex+"p", ex+"m",
		[]Triple{NewTriple(IRI(ex+"a"), IRI(ex+"b"), Literal("c"))})
	assert.ErrorContains(t, err, "publish patch payload")
}
