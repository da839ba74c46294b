package user

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dhis2-sre/eventos/internal/errdef"
	"github.com/dhis2-sre/eventos/pkg/model"
	"golang.org/x/crypto/scrypt"
)

// messageInvalidCredentials doesn't tell whether the username or the password was wrong.
const messageInvalidCredentials = "Usuario o contraseña incorrectos."

func NewService(repository *repository) *Service {
	return &Service{
		repository: repository,
	}
}

type Service struct {
	repository *repository
}

func (s Service) Save(ctx context.Context, user *model.User) error {
	return s.repository.save(ctx, user)
}

// SignUp registers a new user without any groups or capabilities.
func (s Service) SignUp(ctx context.Context, username, email, password string) (*model.User, error) {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %v", err)
	}

	user := &model.User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: hashedPassword,
	}

	err = s.repository.create(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn returns the user with the given credentials. Unknown users and wrong passwords result in
// the same unauthorized error.
func (s Service) SignIn(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repository.findByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errdef.IsNotFound(err) {
			return nil, errdef.NewUnauthorized(messageInvalidCredentials)
		}
		return nil, err
	}

	match, err := comparePasswords(user.Password, password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %v", err)
	}

	if !match {
		return nil, errdef.NewUnauthorized(messageInvalidCredentials)
	}

	return user, nil
}

func hashPassword(password string) (string, error) {
	// example for making salt - https://play.golang.org/p/_Aw6WeWC42I
	salt := make([]byte, 32)
	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	// using recommended cost parameters from - https://godoc.org/golang.org/x/crypto/scrypt
	hash, err := scrypt.Key([]byte(password), salt, 32768, 8, 1, 32)
	if err != nil {
		return "", err
	}

	hashedPassword := fmt.Sprintf("%s.%s", hex.EncodeToString(hash), hex.EncodeToString(salt))

	return hashedPassword, nil
}

func comparePasswords(storedPassword string, suppliedPassword string) (bool, error) {
	passwordAndSalt := strings.Split(storedPassword, ".")
	if len(passwordAndSalt) != 2 {
		return false, fmt.Errorf("wrong password/salt format")
	}

	salt, err := hex.DecodeString(passwordAndSalt[1])
	if err != nil {
		return false, fmt.Errorf("unable to verify user password")
	}

	hash, err := scrypt.Key([]byte(suppliedPassword), salt, 32768, 8, 1, 32)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(hash)), []byte(passwordAndSalt[0])) == 1, nil
}

func (s Service) FindAll(ctx context.Context) ([]*model.User, error) {
	return s.repository.findAll(ctx)
}

// FindById returns the user with its groups and capabilities.
func (s Service) FindById(ctx context.Context, id uint) (*model.User, error) {
	return s.repository.findById(ctx, id)
}

// FindOrCreate returns the user with the given username and creates it with the given password
// if it doesn't exist. The password of an existing user is left as is.
func (s Service) FindOrCreate(ctx context.Context, username, password string) (*model.User, error) {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &model.User{
		Username: username,
		Password: hashedPassword,
	}

	return s.repository.findOrCreate(ctx, user)
}
