package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	"traffic_violation/internal/domain"
)

// CognitoAPI is the subset of the Cognito user-pool client used here.
type CognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, in *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
}

// Cognito's NotAuthorizedException text for a confirm call on a confirmed user.
const alreadyConfirmedMarker = "Current status is CONFIRMED"

type CognitoProvider struct {
	api          CognitoAPI
	userPoolID   string
	clientID     string
	clientSecret string
}

func NewCognitoProvider(api CognitoAPI, userPoolID, clientID, clientSecret string) *CognitoProvider {
	return &CognitoProvider{
		api:          api,
		userPoolID:   userPoolID,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// SignUp registers an unconfirmed account keyed by email, storing the
// display name in the standard "name" attribute.
func (p *CognitoProvider) SignUp(ctx context.Context, email, password, displayName string) error {
	_, err := p.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(p.clientID),
		Username:   aws.String(email),
		Password:   aws.String(password),
		SecretHash: p.secretHash(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(displayName)},
		},
	})
	return translate(err)
}

func (p *CognitoProvider) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := p.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		SecretHash:       p.secretHash(email),
	})
	return translate(err)
}

// Authenticate runs USER_PASSWORD_AUTH and returns the access token.
func (p *CognitoProvider) Authenticate(ctx context.Context, email, password string) (string, error) {
	params := map[string]string{
		"USERNAME": email,
		"PASSWORD": password,
	}
	if hash := p.secretHash(email); hash != nil {
		params["SECRET_HASH"] = *hash
	}

	out, err := p.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return "", translate(err)
	}
	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return "", fmt.Errorf("%w: unsupported auth challenge %q", ErrRejected, out.ChallengeName)
	}
	return *out.AuthenticationResult.AccessToken, nil
}

func (p *CognitoProvider) GetUserAttributes(ctx context.Context, accessToken string) ([]domain.UserAttribute, error) {
	out, err := p.api.GetUser(ctx, &cip.GetUserInput{AccessToken: aws.String(accessToken)})
	if err != nil {
		return nil, translate(err)
	}
	attrs := make([]domain.UserAttribute, 0, len(out.UserAttributes))
	for _, a := range out.UserAttributes {
		attrs = append(attrs, domain.UserAttribute{
			Name:  aws.ToString(a.Name),
			Value: aws.ToString(a.Value),
		})
	}
	return attrs, nil
}

// secretHash is only sent when the app client has a secret.
func (p *CognitoProvider) secretHash(username string) *string {
	if p.clientSecret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(p.clientSecret))
	mac.Write([]byte(username + p.clientID))
	return aws.String(base64.StdEncoding.EncodeToString(mac.Sum(nil)))
}

// translate maps Cognito exceptions onto the package error kinds and keeps
// the provider message for display.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var (
		exists       *types.UsernameExistsException
		mismatch     *types.CodeMismatchException
		expired      *types.ExpiredCodeException
		notAuth      *types.NotAuthorizedException
		notConfirmed *types.UserNotConfirmedException
		notFound     *types.UserNotFoundException
	)
	switch {
	case errors.As(err, &exists):
		return newError(ErrAccountExists, exists.ErrorMessage())
	case errors.As(err, &mismatch):
		return newError(ErrCodeMismatch, mismatch.ErrorMessage())
	case errors.As(err, &expired):
		return newError(ErrCodeMismatch, expired.ErrorMessage())
	case errors.As(err, &notAuth):
		if strings.Contains(notAuth.ErrorMessage(), alreadyConfirmedMarker) {
			return newError(ErrAlreadyConfirmed, notAuth.ErrorMessage())
		}
		return newError(ErrNotAuthorized, notAuth.ErrorMessage())
	case errors.As(err, &notConfirmed):
		return newError(ErrNotConfirmed, notConfirmed.ErrorMessage())
	case errors.As(err, &notFound):
		return newError(ErrNotAuthorized, notFound.ErrorMessage())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return newError(ErrRejected, apiErr.ErrorMessage())
	}
	return fmt.Errorf("cognito: %w", err)
}
