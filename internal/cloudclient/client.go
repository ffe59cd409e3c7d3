// Package cloudclient vends authenticated AWS service clients for a single
// investigation. One Client is constructed per investigation and shared
// read-only by every tool invocation it fans out to.
package cloudclient

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/health"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/xray"

	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
)

// Service names accepted by Client.Service.
const (
	ServiceCompute    = "compute"    // lambda.Client
	ServiceGateway    = "gateway"    // apigateway.Client
	ServiceWorkflow   = "workflow"   // sfn.Client
	ServiceStorage    = "storage"    // s3.Client
	ServiceQueue      = "queue"      // sqs.Client
	ServiceTopic      = "topic"      // sns.Client
	ServiceEventBus   = "eventbus"   // eventbridge.Client
	ServiceRelational = "relational" // rds.Client
	ServiceKeyValue   = "keyvalue"   // dynamodb.Client
	ServiceNetwork    = "network"    // ec2.Client
	ServiceIdentity   = "identity"   // iam.Client
	ServiceLogs       = "logs"       // cloudwatchlogs.Client
	ServiceMetrics    = "metrics"    // cloudwatch.Client
	ServiceTrace      = "trace"      // xray.Client
	ServiceAudit      = "audit"      // cloudtrail.Client
	ServiceHealth     = "health"     // health.Client
)

// Config configures a Client for one investigation.
type Config struct {
	Region     string
	RoleARN    string
	ExternalID string
}

// Client vends AWS service clients backed by a single credential chain.
// Built once per investigation, read-only and safe for concurrent use by
// the evidence collector's fan-out goroutines for the lifetime of the
// investigation; the caller drops the reference on completion.
type Client struct {
	cfg      aws.Config
	region   string
	services sync.Map // service name -> concrete *xxx.Client
}

// New loads AWS credentials for the investigation and, if RoleARN is set,
// assumes that role eagerly so a credential failure surfaces here rather
// than mid-investigation inside a tool call.
func New(ctx context.Context, c Config) (*Client, error) {
	region := c.Region
	if region == "" {
		region = "us-east-1"
	}

	baseCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, rcaerrors.Credential("cloudclient", "load AWS credentials: %v", err)
	}

	if c.RoleARN != "" {
		stsClient := sts.NewFromConfig(baseCfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, c.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			if c.ExternalID != "" {
				o.ExternalID = aws.String(c.ExternalID)
			}
		})
		baseCfg.Credentials = aws.NewCredentialsCache(provider)

		if _, err := baseCfg.Credentials.Retrieve(ctx); err != nil {
			return nil, rcaerrors.Credential("cloudclient", "assume role %s: %v", c.RoleARN, err)
		}
	}

	return &Client{cfg: baseCfg, region: region}, nil
}

// Region returns the region this client was constructed for.
func (c *Client) Region() string { return c.region }

// Service lazily constructs and caches the concrete AWS SDK client for
// name, or returns the cached one from a previous call. Safe for
// concurrent use.
func (c *Client) Service(name string) (any, error) {
	if v, ok := c.services.Load(name); ok {
		return v, nil
	}

	svc, err := c.build(name)
	if err != nil {
		return nil, err
	}

	actual, _ := c.services.LoadOrStore(name, svc)
	return actual, nil
}

func (c *Client) build(name string) (any, error) {
	switch name {
	case ServiceCompute:
		return lambda.NewFromConfig(c.cfg), nil
	case ServiceGateway:
		return apigateway.NewFromConfig(c.cfg), nil
	case ServiceWorkflow:
		return sfn.NewFromConfig(c.cfg), nil
	case ServiceStorage:
		return s3.NewFromConfig(c.cfg), nil
	case ServiceQueue:
		return sqs.NewFromConfig(c.cfg), nil
	case ServiceTopic:
		return sns.NewFromConfig(c.cfg), nil
	case ServiceEventBus:
		return eventbridge.NewFromConfig(c.cfg), nil
	case ServiceRelational:
		return rds.NewFromConfig(c.cfg), nil
	case ServiceKeyValue:
		return dynamodb.NewFromConfig(c.cfg), nil
	case ServiceNetwork:
		return ec2.NewFromConfig(c.cfg), nil
	case ServiceIdentity:
		return iam.NewFromConfig(c.cfg), nil
	case ServiceLogs:
		return cloudwatchlogs.NewFromConfig(c.cfg), nil
	case ServiceMetrics:
		return cloudwatch.NewFromConfig(c.cfg), nil
	case ServiceTrace:
		return xray.NewFromConfig(c.cfg), nil
	case ServiceAudit:
		return cloudtrail.NewFromConfig(c.cfg), nil
	case ServiceHealth:
		return health.NewFromConfig(c.cfg), nil
	default:
		return nil, rcaerrors.Internal("cloudclient", "unknown service %q", name)
	}
}

// Lambda is a typed convenience wrapper over Service(ServiceCompute).
func (c *Client) Lambda() (*lambda.Client, error) { return typed[*lambda.Client](c, ServiceCompute) }

func (c *Client) APIGateway() (*apigateway.Client, error) {
	return typed[*apigateway.Client](c, ServiceGateway)
}

func (c *Client) StepFunctions() (*sfn.Client, error) { return typed[*sfn.Client](c, ServiceWorkflow) }

func (c *Client) S3() (*s3.Client, error) { return typed[*s3.Client](c, ServiceStorage) }

func (c *Client) SQS() (*sqs.Client, error) { return typed[*sqs.Client](c, ServiceQueue) }

func (c *Client) SNS() (*sns.Client, error) { return typed[*sns.Client](c, ServiceTopic) }

func (c *Client) EventBridge() (*eventbridge.Client, error) {
	return typed[*eventbridge.Client](c, ServiceEventBus)
}

func (c *Client) RDS() (*rds.Client, error) { return typed[*rds.Client](c, ServiceRelational) }

func (c *Client) DynamoDB() (*dynamodb.Client, error) {
	return typed[*dynamodb.Client](c, ServiceKeyValue)
}

func (c *Client) EC2() (*ec2.Client, error) { return typed[*ec2.Client](c, ServiceNetwork) }

func (c *Client) IAM() (*iam.Client, error) { return typed[*iam.Client](c, ServiceIdentity) }

func (c *Client) CloudWatchLogs() (*cloudwatchlogs.Client, error) {
	return typed[*cloudwatchlogs.Client](c, ServiceLogs)
}

func (c *Client) CloudWatch() (*cloudwatch.Client, error) {
	return typed[*cloudwatch.Client](c, ServiceMetrics)
}

func (c *Client) XRay() (*xray.Client, error) { return typed[*xray.Client](c, ServiceTrace) }

func (c *Client) CloudTrail() (*cloudtrail.Client, error) {
	return typed[*cloudtrail.Client](c, ServiceAudit)
}

func (c *Client) Health() (*health.Client, error) { return typed[*health.Client](c, ServiceHealth) }

func typed[T any](c *Client, name string) (T, error) {
	var zero T
	svc, err := c.Service(name)
	if err != nil {
		return zero, err
	}
	t, ok := svc.(T)
	if !ok {
		return zero, rcaerrors.Internal("cloudclient", "service %q has unexpected type %T", name, svc)
	}
	return t, nil
}

// Close releases this Client's reference. No credentials are pooled beyond
// the investigation's own Client value, so this is a no-op placeholder for
// symmetry with callers that defer a Close.
func (c *Client) Close() error { return nil }
