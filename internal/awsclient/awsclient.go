// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package awsclient validates that operator-generated AWS credentials
// are live. It only confirms identity; it never provisions anything.
package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

//go:generate mockgen -destination=mock/identity.go -package=mock github.com/osd-sre/account-inttest/internal/awsclient IdentityAPI

// IdentityAPI is the STS surface the harness needs.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// NewSTSClient builds an STS client from a static access key pair.
func NewSTSClient(ctx context.Context, accessKeyID, secretAccessKey, sessionToken, region string) (*sts.Client, error) {
	if accessKeyID == "" || secretAccessKey == "" {
		return nil, errors.New("access key id and secret access key are required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sts.NewFromConfig(cfg), nil
}

// VerifyIdentity confirms the credentials behind api are accepted by
// AWS and returns the account id they belong to.
func VerifyIdentity(ctx context.Context, api IdentityAPI) (string, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("get caller identity: %w", err)
	}
	account := aws.ToString(out.Account)
	if account == "" {
		return "", errors.New("caller identity response carries no account id")
	}
	return account, nil
}
