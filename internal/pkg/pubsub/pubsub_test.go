package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMessage struct {
	Id string `json:"id"`
}

func (testMessage) GetEventTopicName() string {
	return "test.topic"
}

func TestEncodeMessage(t *testing.T) {
	data, err := encodeMessage(testMessage{Id: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(data))

	data, err = encodeMessage("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))
}
