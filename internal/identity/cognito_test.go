package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCognito struct {
	signUpIn  *cip.SignUpInput
	signUpErr error

	confirmErr error

	authIn  *cip.InitiateAuthInput
	authOut *cip.InitiateAuthOutput
	authErr error

	getUserOut *cip.GetUserOutput
	getUserErr error
}

func (f *fakeCognito) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	f.signUpIn = in
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cip.SignUpOutput{}, nil
}

func (f *fakeCognito) ConfirmSignUp(_ context.Context, _ *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &cip.ConfirmSignUpOutput{}, nil
}

func (f *fakeCognito) InitiateAuth(_ context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.authIn = in
	return f.authOut, f.authErr
}

func (f *fakeCognito) GetUser(_ context.Context, _ *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	return f.getUserOut, f.getUserErr
}

func TestSignUp_SendsEmailAndName(t *testing.T) {
	api := &fakeCognito{}
	p := NewCognitoProvider(api, "pool", "client", "")

	require.NoError(t, p.SignUp(context.Background(), "a@x.com", "Abc12345!", "Alice"))

	assert.Equal(t, "a@x.com", aws.ToString(api.signUpIn.Username))
	assert.Nil(t, api.signUpIn.SecretHash)
	require.Len(t, api.signUpIn.UserAttributes, 2)
	assert.Equal(t, "name", aws.ToString(api.signUpIn.UserAttributes[1].Name))
	assert.Equal(t, "Alice", aws.ToString(api.signUpIn.UserAttributes[1].Value))
}

func TestSignUp_DuplicateAccount(t *testing.T) {
	api := &fakeCognito{signUpErr: &types.UsernameExistsException{Message: aws.String("An account with the given email already exists.")}}
	p := NewCognitoProvider(api, "pool", "client", "")

	err := p.SignUp(context.Background(), "a@x.com", "Abc12345!", "Alice")
	require.ErrorIs(t, err, ErrAccountExists)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSignUp_PasswordPolicyPassesProviderMessage(t *testing.T) {
	api := &fakeCognito{signUpErr: &types.InvalidPasswordException{Message: aws.String("Password did not conform with policy: Password must have symbol characters")}}
	p := NewCognitoProvider(api, "pool", "client", "")

	err := p.SignUp(context.Background(), "a@x.com", "abc", "Alice")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Password must have symbol characters")
}

func TestConfirmSignUp_ErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"already confirmed", &types.NotAuthorizedException{Message: aws.String("User cannot be confirmed. Current status is CONFIRMED")}, ErrAlreadyConfirmed},
		{"wrong code", &types.CodeMismatchException{Message: aws.String("Invalid verification code provided, please try again.")}, ErrCodeMismatch},
		{"expired code", &types.ExpiredCodeException{Message: aws.String("Invalid code provided, please request a code again.")}, ErrCodeMismatch},
		{"other not authorized", &types.NotAuthorizedException{Message: aws.String("nope")}, ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCognitoProvider(&fakeCognito{confirmErr: tt.err}, "pool", "client", "")
			err := p.ConfirmSignUp(context.Background(), "a@x.com", "123456")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticate_ReturnsAccessTokenWithSecretHash(t *testing.T) {
	api := &fakeCognito{authOut: &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("access")},
	}}
	p := NewCognitoProvider(api, "pool", "client", "secret")

	token, err := p.Authenticate(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access", token)
	assert.Equal(t, types.AuthFlowTypeUserPasswordAuth, api.authIn.AuthFlow)
	assert.NotEmpty(t, api.authIn.AuthParameters["SECRET_HASH"])
	assert.Equal(t, aws.ToString(p.secretHash("a@x.com")), api.authIn.AuthParameters["SECRET_HASH"])
}

func TestAuthenticate_Challenge(t *testing.T) {
	api := &fakeCognito{authOut: &cip.InitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}}
	p := NewCognitoProvider(api, "pool", "client", "")

	_, err := p.Authenticate(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestAuthenticate_NotConfirmed(t *testing.T) {
	api := &fakeCognito{authErr: &types.UserNotConfirmedException{Message: aws.String("User is not confirmed.")}}
	p := NewCognitoProvider(api, "pool", "client", "")

	_, err := p.Authenticate(context.Background(), "a@x.com", "pw")
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestGetUserAttributes(t *testing.T) {
	api := &fakeCognito{getUserOut: &cip.GetUserOutput{UserAttributes: []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String("a@x.com")},
		{Name: aws.String("name"), Value: aws.String("Alice")},
	}}}
	p := NewCognitoProvider(api, "pool", "client", "")

	attrs, err := p.GetUserAttributes(context.Background(), "access")
	require.NoError(t, err)
	require.Len(t, attrs, 2)
	assert.Equal(t, "Alice", attrs[1].Value)
}

func TestTranslate_GenericErrors(t *testing.T) {
	assert.NoError(t, translate(nil))

	apiErr := &smithy.GenericAPIError{Code: "TooManyRequestsException", Message: "slow down"}
	assert.ErrorIs(t, translate(apiErr), ErrRejected)

	plain := errors.New("dial tcp: timeout")
	err := translate(plain)
	assert.ErrorIs(t, err, plain)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestReason(t *testing.T) {
	err := translate(&types.CodeMismatchException{Message: aws.String("Invalid verification code provided, please try again.")})
	assert.Equal(t, "Invalid verification code provided, please try again.", Reason(err))
	assert.Equal(t, "Invalid verification code provided, please try again.", Reason(fmt.Errorf("confirm: %w", err)))
	assert.Equal(t, "boom", Reason(errors.New("boom")))
}
