package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockJSONConn struct {
	mock.Mock
}

func (m *MockJSONConn) WriteJSON(v any) error {
	args := m.Called(v)
	return args.Error(0)
}

func (m *MockJSONConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	args := m.Called(messageType, data, deadline)
	return args.Error(0)
}

func (m *MockJSONConn) SetWriteDeadline(t time.Time) error {
	args := m.Called(t)
	return args.Error(0)
}

func TestWSConnectionRepository(t *testing.T) {
	repo := NewWSConnectionRepository()
	conn := &MockJSONConn{}
	id := uuid.New()

	conn.On("SetWriteDeadline", mock.Anything).Return(nil)
	conn.On("WriteJSON", "hello").Return(nil).Once()
	conn.On("WriteJSON", "boom").Return(errors.New("broken pipe")).Once()
	conn.On("WriteControl", websocket.PingMessage, []byte(nil), mock.Anything).Return(nil).Once()

	repo.Add(id, "user-1", conn)
	assert.Equal(t, 1, repo.Count())

	assert.NoError(t, repo.Write(id, "hello"))
	assert.Error(t, repo.Write(id, "boom"))
	assert.NoError(t, repo.Ping(id))

	repo.Remove(id)
	repo.Remove(id)
	assert.Equal(t, 0, repo.Count())
	assert.ErrorIs(t, repo.Write(id, "hello"), ErrConnectionNotFound)

	conn.AssertExpectations(t)
}
