package cloudclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsRegion(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_REGION", "")

	c, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", c.Region())
}

func TestNewHonorsExplicitRegion(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := New(context.Background(), Config{Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", c.Region())
}

func TestServiceCachesClient(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := New(context.Background(), Config{Region: "us-east-1"})
	require.NoError(t, err)

	first, err := c.Service(ServiceCompute)
	require.NoError(t, err)
	second, err := c.Service(ServiceCompute)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestServiceUnknownName(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := New(context.Background(), Config{Region: "us-east-1"})
	require.NoError(t, err)

	_, err = c.Service("not-a-service")
	assert.Error(t, err)
}

func TestTypedAccessorsReturnDistinctClientsPerService(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := New(context.Background(), Config{Region: "us-east-1"})
	require.NoError(t, err)

	lambdaClient, err := c.Lambda()
	require.NoError(t, err)
	assert.NotNil(t, lambdaClient)

	s3Client, err := c.S3()
	require.NoError(t, err)
	assert.NotNil(t, s3Client)

	healthClient, err := c.Health()
	require.NoError(t, err)
	assert.NotNil(t, healthClient)
}
