package rpc

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestServiceDescCoversServer(t *testing.T) {
	iface := reflect.TypeOf((*Server)(nil)).Elem()
	require.Len(t, ServiceDesc.Methods, iface.NumMethod())
	for _, m := range ServiceDesc.Methods {
		_, ok := iface.MethodByName(m.MethodName)
		assert.True(t, ok, "method %s missing from Server", m.MethodName)
	}
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/letterdesk.v1.LetterDesk/Login", FullMethod(MethodLogin))
	assert.True(t, PublicMethods[FullMethod(MethodSignup)])
	assert.False(t, PublicMethods[FullMethod(MethodFetchAllUsers)])
}

func TestJSONCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	in := &Letter{ID: "1", Title: "t", TemplateData: map[string]string{"a": "b"}, DueDate: &due}
	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"templateData":{"a":"b"}`)

	var out Letter
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, *in, out)
}
