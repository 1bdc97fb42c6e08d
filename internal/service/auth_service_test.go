package service_test

import (
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
)

func (s *ServiceSuite) TestSignupAndLogin() {
	user, err := s.auth.Signup(s.ctx, "hamza.ali", "s3cretpass", "")
	s.Require().NoError(err)
	s.Equal(domain.UserRoleStudent, user.Role)
	s.NotEqual("s3cretpass", user.PasswordHash)

	_, err = s.auth.Signup(s.ctx, "hamza.ali", "s3cretpass", domain.UserRoleOwner)
	s.ErrorIs(err, repository.ErrUserAlreadyExists)

	_, err = s.auth.Signup(s.ctx, "someone", "short1", "")
	s.ErrorIs(err, validator.ErrPasswordTooShort)

	_, err = s.auth.Signup(s.ctx, "boss", "s3cretpass", domain.UserRoleAdmin)
	s.ErrorIs(err, domain.ErrInvalidUserRole)

	_, err = s.auth.Login(s.ctx, "hamza.ali", "wrongpass1")
	s.ErrorIs(err, service.ErrInvalidCredentials)

	_, err = s.auth.Login(s.ctx, "nobody", "s3cretpass")
	s.ErrorIs(err, service.ErrInvalidCredentials)

	tokens, err := s.auth.Login(s.ctx, "hamza.ali", "s3cretpass")
	s.Require().NoError(err)
	s.NotEmpty(tokens.AccessToken)
	s.Len(s.sessions.sessions, 1)

	me, err := s.auth.Me(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("hamza.ali", me.Username)
}

func (s *ServiceSuite) TestRefreshRotatesSession() {
	_, err := s.auth.Signup(s.ctx, "sana", "passw0rdX", domain.UserRoleOwner)
	s.Require().NoError(err)

	first, err := s.auth.Login(s.ctx, "sana", "passw0rdX")
	s.Require().NoError(err)

	second, err := s.auth.Refresh(s.ctx, first.RefreshToken)
	s.Require().NoError(err)
	s.NotEqual(first.RefreshID, second.RefreshID)

	_, err = s.auth.Refresh(s.ctx, first.RefreshToken)
	s.ErrorIs(err, utils.ErrInvalidToken)

	s.Require().NoError(s.auth.Logout(s.ctx, second.RefreshToken))
	s.Empty(s.sessions.sessions)

	_, err = s.auth.Refresh(s.ctx, second.RefreshToken)
	s.ErrorIs(err, utils.ErrInvalidToken)

	_, err = s.auth.Refresh(s.ctx, first.AccessToken)
	s.ErrorIs(err, utils.ErrInvalidToken)
}
