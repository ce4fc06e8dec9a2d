package notify

import (
	"context"
	"daily-rep/internal/utils"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/sirupsen/logrus"
)

// LambdaNotifier hands notifications to the notify function without waiting for delivery.
type LambdaNotifier struct {
	logger       *logrus.Entry
	client       utils.LambdaAPI
	functionName string
}

func NewLambdaNotifier(logger *logrus.Entry, client utils.LambdaAPI, functionName string) *LambdaNotifier {
	return &LambdaNotifier{
		logger:       logger,
		client:       client,
		functionName: functionName,
	}
}

func (n *LambdaNotifier) NotifyNewRep(ctx context.Context, userID, repID, title string) error {
	payload, err := json.Marshal(Request{
		UserID:   userID,
		RepID:    repID,
		RepTitle: title,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notify payload: %w", err)
	}

	_, err = n.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(n.functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", n.functionName, err)
	}

	n.logger.WithFields(logrus.Fields{
		"userId": userID,
		"repId":  repID,
	}).Info("Successfully triggered notification")
	return nil
}
