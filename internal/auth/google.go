package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// Google userinfo endpoint，回调成功后用 access token 拉取用户档案
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	// state token 的有效期：用户需在该窗口内完成授权
	stateTTL = 10 * time.Minute
)

// Google 承载OAuth登录与回调。回调成功后写入会话Cookie，
// Cookie的值是一个JWT，无需服务端保存状态即可校验。
type Google struct {
	ClientID      string
	ClientSecret  string
	RedirectURL   string
	SessionSecret string
	CookieName    string
	CookieMaxAge  time.Duration
	CookieSecure  bool
	SuccessURL    string
	FailureURL    string
	Logger        *zap.Logger
	Now           func() time.Time

	// 测试时可替换
	UserInfoURL string
}

// NewGoogle 创建Google登录提供方
func NewGoogle(clientID, clientSecret, redirectURL, sessionSecret, cookieName string,
	cookieMaxAge time.Duration, cookieSecure bool, logger *zap.Logger) *Google {
	return &Google{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RedirectURL:   redirectURL,
		SessionSecret: sessionSecret,
		CookieName:    cookieName,
		CookieMaxAge:  cookieMaxAge,
		CookieSecure:  cookieSecure,
		SuccessURL:    "/auth/success",
		FailureURL:    "/auth/failure",
		Logger:        logger,
		Now:           time.Now,
		UserInfoURL:   defaultUserInfoURL,
	}
}

func (g *Google) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// Login 重定向到Google授权页。state是一个编码了随机串的短期JWT，
// 回调时校验以防CSRF；无需在服务端保存state。
func (g *Google) Login(c *gin.Context) {
	state, err := g.issueState()
	if err != nil {
		g.Logger.Error("Failed to issue oauth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "InternalError",
			"message": "could not start sign-in flow",
		})
		return
	}
	url := g.config().AuthCodeURL(state, oauth2.AccessTypeOnline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// Callback 处理授权回调：校验state、用code换token、拉取用户档案、
// 写入会话Cookie，随后重定向到成功页；任何一步失败都重定向到失败页。
func (g *Google) Callback(c *gin.Context) {
	log := g.Logger.With(
		zap.String("component", "auth"),
		zap.String("remote_addr", c.ClientIP()),
	)

	if err := g.verifyState(c.Query("state")); err != nil {
		log.Warn("Invalid oauth state received", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, g.FailureURL)
		return
	}

	code := c.Query("code")
	if code == "" {
		log.Warn("Authorization callback without code")
		c.Redirect(http.StatusTemporaryRedirect, g.FailureURL)
		return
	}

	conf := g.config()
	token, err := conf.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Warn("Unable to exchange code for access token", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, g.FailureURL)
		return
	}

	id, err := g.fetchIdentity(c, conf, token)
	if err != nil {
		log.Warn("Unable to fetch user profile", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, g.FailureURL)
		return
	}

	session, err := IssueSession(g.SessionSecret, id, g.CookieMaxAge)
	if err != nil {
		log.Error("Failed to issue session", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, g.FailureURL)
		return
	}

	http.SetCookie(c.Writer, SessionCookie(g.CookieName, session, g.CookieMaxAge, g.CookieSecure))
	c.Redirect(http.StatusTemporaryRedirect, g.SuccessURL)
}

// Logout 使会话Cookie过期并重定向到成功页
func (g *Google) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, ExpiredSessionCookie(g.CookieName, g.CookieSecure))
	c.Redirect(http.StatusTemporaryRedirect, g.SuccessURL)
}

func (g *Google) fetchIdentity(c *gin.Context, conf *oauth2.Config, token *oauth2.Token) (Identity, error) {
	client := conf.Client(c.Request.Context(), token)
	resp, err := client.Get(g.UserInfoURL)
	if err != nil {
		return Identity{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.New("userinfo request failed: " + resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, err
	}

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return Identity{}, err
	}
	if profile.Email == "" {
		return Identity{}, errors.New("userinfo response has no email")
	}

	return Identity{
		Subject: profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}, nil
}

func (g *Google) issueState() (string, error) {
	now := g.Now()
	claims := jwt.RegisteredClaims{
		ID:        randomString(32),
		Issuer:    "moldline",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.SessionSecret))
}

func (g *Google) verifyState(state string) error {
	if state == "" {
		return errors.New("missing state")
	}
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(g.SessionSecret), nil
	})
	return err
}

func randomString(length int) string {
	k := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(k)
}
