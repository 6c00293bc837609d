package graphql

import (
	"context"
	"strconv"
	"time"

	gql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/hugmood/internal/common"
	"github.com/dmitrijs2005/hugmood/internal/logging"
	"github.com/dmitrijs2005/hugmood/internal/server/models"
	"github.com/dmitrijs2005/hugmood/internal/server/services"
)

// Sessions is implemented by services.SessionService.
type Sessions interface {
	Login(ctx context.Context, identifier, password string) (*services.AuthResult, error)
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, identity *models.Identity) error
	ChangePassword(ctx context.Context, identity *models.Identity, current, next string) (*services.PasswordChangeResult, error)
	ValidateToken(ctx context.Context, token string) (*services.Validation, error)
	Me(ctx context.Context, identity *models.Identity) (*models.PublicUser, error)
	IdentityFromToken(token string) (*models.Identity, error)
}

type Resolver struct {
	sessions Sessions
	logger   logging.Logger
}

// identity resolves the bearer token stored in ctx by the handler.
func (r *Resolver) identity(ctx context.Context) (*models.Identity, error) {
	token := tokenFromContext(ctx)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}
	return r.sessions.IdentityFromToken(token)
}

func (r *Resolver) logInternal(ctx context.Context, op string, err error) {
	if common.KindOf(err) == common.KindInternal {
		r.logger.Error(ctx, "resolver failed", "op", op, "error", err)
	}
}

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	identity, err := r.identity(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	u, err := r.sessions.Me(ctx, identity)
	if err != nil {
		r.logInternal(ctx, "me", err)
		return nil, wrapErr(err)
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) ValidateToken(ctx context.Context, args struct{ Token string }) (*validationResolver, error) {
	v, err := r.sessions.ValidateToken(ctx, args.Token)
	if err != nil {
		r.logInternal(ctx, "validateToken", err)
		return nil, wrapErr(err)
	}
	return &validationResolver{v: v}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*authPayloadResolver, error) {
	res, err := r.sessions.Login(ctx, args.Email, args.Password)
	if err != nil {
		r.logInternal(ctx, "login", err)
		return nil, wrapErr(err)
	}
	return &authPayloadResolver{res: res}, nil
}

type registerInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName *string
	AvatarURL   *string
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*authPayloadResolver, error) {
	in := services.RegisterInput{
		Username:  args.Input.Username,
		Email:     args.Input.Email,
		Password:  args.Input.Password,
		AvatarURL: args.Input.AvatarURL,
	}
	if args.Input.DisplayName != nil {
		in.DisplayName = *args.Input.DisplayName
	}
	res, err := r.sessions.Register(ctx, in)
	if err != nil {
		r.logInternal(ctx, "register", err)
		return nil, wrapErr(err)
	}
	return &authPayloadResolver{res: res}, nil
}

func (r *Resolver) RefreshToken(ctx context.Context, args struct{ Token string }) (*authPayloadResolver, error) {
	res, err := r.sessions.Refresh(ctx, args.Token)
	if err != nil {
		r.logInternal(ctx, "refreshToken", err)
		return nil, wrapErr(err)
	}
	return &authPayloadResolver{res: res}, nil
}

// Logout succeeds for anonymous callers too.
func (r *Resolver) Logout(ctx context.Context) (bool, error) {
	identity, err := r.identity(ctx)
	if err != nil {
		return true, nil
	}
	if err := r.sessions.Logout(ctx, identity); err != nil {
		r.logger.Error(ctx, "logout failed", "error", err)
	}
	return true, nil
}

func (r *Resolver) ChangePassword(ctx context.Context, args struct {
	CurrentPassword string
	NewPassword     string
}) (*passwordChangeResolver, error) {
	identity, err := r.identity(ctx)
	if err != nil {
		return nil, wrapErr(err)
	}
	res, err := r.sessions.ChangePassword(ctx, identity, args.CurrentPassword, args.NewPassword)
	if err != nil {
		r.logInternal(ctx, "changePassword", err)
		return nil, wrapErr(err)
	}
	return &passwordChangeResolver{res: res}, nil
}

type userResolver struct{ u *models.PublicUser }

func (r *userResolver) ID() gql.ID { return gql.ID(strconv.FormatInt(r.u.ID, 10)) }
func (r *userResolver) Username() string { return r.u.Username }
func (r *userResolver) Email() string { return r.u.Email }
func (r *userResolver) DisplayName() string { return r.u.DisplayName }
func (r *userResolver) AvatarURL() *string { return r.u.AvatarURL }
func (r *userResolver) CreatedAt() string { return r.u.CreatedAt.UTC().Format(time.RFC3339) }

type authPayloadResolver struct{ res *services.AuthResult }

func (r *authPayloadResolver) Token() string { return r.res.Token }
func (r *authPayloadResolver) RefreshToken() string { return r.res.RefreshToken }
func (r *authPayloadResolver) User() *userResolver { return &userResolver{u: r.res.User} }

type validationResolver struct{ v *services.Validation }

func (r *validationResolver) Valid() bool { return r.v.Valid }

func (r *validationResolver) User() *userResolver {
	if r.v.User == nil {
		return nil
	}
	return &userResolver{u: r.v.User}
}

func (r *validationResolver) Reason() *string {
	if r.v.Reason == "" {
		return nil
	}
	s := string(r.v.Reason)
	return &s
}

type passwordChangeResolver struct{ res *services.PasswordChangeResult }

func (r *passwordChangeResolver) Success() bool { return r.res.Success }
func (r *passwordChangeResolver) Message() string { return r.res.Message }
