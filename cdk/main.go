package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type StatsHubStackProps struct {
	awscdk.StackProps
}

// storeEnv forwards the persistence settings from the deploy shell. Postgres
// wins when both connection strings are present, same as the app itself.
func storeEnv() map[string]*string {
	env := map[string]*string{}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		env["STORE_DRIVER"] = jsii.String("postgres")
		env["POSTGRES_DSN"] = jsii.String(dsn)
		return env
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		env["STORE_DRIVER"] = jsii.String("mongo")
		env["MONGO_URI"] = jsii.String(uri)
		if db := os.Getenv("MONGO_DATABASE"); db != "" {
			env["MONGO_DATABASE"] = jsii.String(db)
		}
	}
	return env
}

func NewStatsHubStack(scope constructs.Construct, id string, props *StatsHubStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	env := storeEnv()
	if len(env) == 0 {
		panic("POSTGRES_DSN or MONGO_URI must be set to deploy")
	}
	env["APP"] = jsii.String("prod")
	env["AUTH_PROVIDER"] = jsii.String("clerk")
	for _, key := range []string{"CLERK_SECRET_KEY", "SUMMARY_API_KEY", "SUMMARY_ENDPOINT", "SUMMARY_MODEL", "NATS_URL", "ALLOWED_ORIGINS", "APP_TIMEZONE"} {
		if v := os.Getenv(key); v != "" {
			env[key] = jsii.String(v)
		}
	}

	lambdaFn := awslambda.NewFunction(stack, jsii.String("StatsHubApi"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String("../build"), nil),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(30)),
		MemorySize:   jsii.Number(256),
		LogRetention: awslogs.RetentionDays_TWO_WEEKS,
		Environment:  &env,
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("StatsHubApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewStatsHubStack(app, "StatsHubStack", &StatsHubStackProps{})
	app.Synth(nil)
}
