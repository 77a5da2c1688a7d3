package service

import (
	"strconv"
	"strings"

	"github.com/coderi421/adkit/datetime"
)

// Entity is what the generic tooling (listing, snapshots, panels) needs to
// know about a row.
type Entity interface {
	EntityID() string
	EntityName() string
}

type AdUnit struct {
	ID           string `xml:"id" json:"id"`
	ParentID     string `xml:"parentId,omitempty" json:"parentId,omitempty"`
	HasChildren  bool   `xml:"hasChildren" json:"hasChildren"`
	Name         string `xml:"name" json:"name"`
	Description  string `xml:"description,omitempty" json:"description,omitempty"`
	TargetWindow string `xml:"targetWindow,omitempty" json:"targetWindow,omitempty"`
	Status       string `xml:"status,omitempty" json:"status,omitempty"`
	AdUnitCode   string `xml:"adUnitCode,omitempty" json:"adUnitCode,omitempty"`
}

func (a AdUnit) EntityID() string   { return a.ID }
func (a AdUnit) EntityName() string { return a.Name }

type Company struct {
	ID           int64  `xml:"id" json:"id"`
	Name         string `xml:"name" json:"name"`
	Type         string `xml:"type,omitempty" json:"type,omitempty"`
	Address      string `xml:"address,omitempty" json:"address,omitempty"`
	Email        string `xml:"email,omitempty" json:"email,omitempty"`
	ExternalID   string `xml:"externalId,omitempty" json:"externalId,omitempty"`
	Comment      string `xml:"comment,omitempty" json:"comment,omitempty"`
	CreditStatus string `xml:"creditStatus,omitempty" json:"creditStatus,omitempty"`
}

func (c Company) EntityID() string   { return strconv.FormatInt(c.ID, 10) }
func (c Company) EntityName() string { return c.Name }

type Size struct {
	Width         int  `xml:"width" json:"width"`
	Height        int  `xml:"height" json:"height"`
	IsAspectRatio bool `xml:"isAspectRatio" json:"isAspectRatio"`
}

// Creative 是多态的，具体的子类型在 xsi:type 里面
type Creative struct {
	Type         string `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type,omitempty"`
	ID           int64  `xml:"id" json:"id"`
	AdvertiserID int64  `xml:"advertiserId" json:"advertiserId"`
	Name         string `xml:"name" json:"name"`
	Size         Size   `xml:"size" json:"size"`
	PreviewURL   string `xml:"previewUrl,omitempty" json:"previewUrl,omitempty"`
}

func (c Creative) EntityID() string   { return strconv.FormatInt(c.ID, 10) }
func (c Creative) EntityName() string { return c.Name }

type CreativeTemplate struct {
	ID          int64  `xml:"id" json:"id"`
	Name        string `xml:"name" json:"name"`
	Description string `xml:"description,omitempty" json:"description,omitempty"`
	Type        string `xml:"type,omitempty" json:"type,omitempty"`
	Status      string `xml:"status,omitempty" json:"status,omitempty"`
}

func (c CreativeTemplate) EntityID() string   { return strconv.FormatInt(c.ID, 10) }
func (c CreativeTemplate) EntityName() string { return c.Name }

type CustomTargetingKey struct {
	ID          int64  `xml:"id" json:"id"`
	Name        string `xml:"name" json:"name"`
	DisplayName string `xml:"displayName,omitempty" json:"displayName,omitempty"`
	Type        string `xml:"type,omitempty" json:"type,omitempty"`
}

func (k CustomTargetingKey) EntityID() string   { return strconv.FormatInt(k.ID, 10) }
func (k CustomTargetingKey) EntityName() string { return k.Name }

type CustomTargetingValue struct {
	CustomTargetingKeyID int64  `xml:"customTargetingKeyId" json:"customTargetingKeyId"`
	ID                   int64  `xml:"id" json:"id"`
	Name                 string `xml:"name" json:"name"`
	DisplayName          string `xml:"displayName,omitempty" json:"displayName,omitempty"`
	MatchType            string `xml:"matchType,omitempty" json:"matchType,omitempty"`
}

func (v CustomTargetingValue) EntityID() string   { return strconv.FormatInt(v.ID, 10) }
func (v CustomTargetingValue) EntityName() string { return v.Name }

type Label struct {
	ID          int64    `xml:"id" json:"id"`
	Name        string   `xml:"name" json:"name"`
	Description string   `xml:"description,omitempty" json:"description,omitempty"`
	IsActive    bool     `xml:"isActive" json:"isActive"`
	Types       []string `xml:"types" json:"types,omitempty"`
}

func (l Label) EntityID() string   { return strconv.FormatInt(l.ID, 10) }
func (l Label) EntityName() string { return l.Name }

// LineItemCreativeAssociation 没有自己的 id，用 lineItemId 和 creativeId 标识
type LineItemCreativeAssociation struct {
	LineItemID                   int64              `xml:"lineItemId" json:"lineItemId"`
	CreativeID                   int64              `xml:"creativeId" json:"creativeId"`
	ManualCreativeRotationWeight float64            `xml:"manualCreativeRotationWeight,omitempty" json:"manualCreativeRotationWeight,omitempty"`
	StartDateTime                *datetime.DateTime `xml:"startDateTime" json:"startDateTime,omitempty"`
	EndDateTime                  *datetime.DateTime `xml:"endDateTime" json:"endDateTime,omitempty"`
	Status                       string             `xml:"status,omitempty" json:"status,omitempty"`
}

func (l LineItemCreativeAssociation) EntityID() string {
	return strconv.FormatInt(l.LineItemID, 10) + "-" + strconv.FormatInt(l.CreativeID, 10)
}

func (l LineItemCreativeAssociation) EntityName() string { return "" }

type Order struct {
	ID            int64              `xml:"id" json:"id"`
	Name          string             `xml:"name" json:"name"`
	StartDateTime *datetime.DateTime `xml:"startDateTime" json:"startDateTime,omitempty"`
	EndDateTime   *datetime.DateTime `xml:"endDateTime" json:"endDateTime,omitempty"`
	Status        string             `xml:"status,omitempty" json:"status,omitempty"`
	IsArchived    bool               `xml:"isArchived" json:"isArchived"`
	Notes         string             `xml:"notes,omitempty" json:"notes,omitempty"`
	PONumber      string             `xml:"poNumber,omitempty" json:"poNumber,omitempty"`
	CurrencyCode  string             `xml:"currencyCode,omitempty" json:"currencyCode,omitempty"`
	AdvertiserID  int64              `xml:"advertiserId" json:"advertiserId"`
	TraffickerID  int64              `xml:"traffickerId" json:"traffickerId"`
}

func (o Order) EntityID() string   { return strconv.FormatInt(o.ID, 10) }
func (o Order) EntityName() string { return o.Name }

// LineItem 属于某个 Order
type LineItem struct {
	ID            int64              `xml:"id" json:"id"`
	OrderID       int64              `xml:"orderId" json:"orderId"`
	Name          string             `xml:"name" json:"name"`
	OrderName     string             `xml:"orderName,omitempty" json:"orderName,omitempty"`
	StartDateTime *datetime.DateTime `xml:"startDateTime" json:"startDateTime,omitempty"`
	EndDateTime   *datetime.DateTime `xml:"endDateTime" json:"endDateTime,omitempty"`
	LineItemType  string             `xml:"lineItemType,omitempty" json:"lineItemType,omitempty"`
	Priority      int                `xml:"priority,omitempty" json:"priority,omitempty"`
	Status        string             `xml:"status,omitempty" json:"status,omitempty"`
	IsArchived    bool               `xml:"isArchived" json:"isArchived"`
	CostType      string             `xml:"costType,omitempty" json:"costType,omitempty"`
	DeliveryRate  string             `xml:"deliveryRateType,omitempty" json:"deliveryRateType,omitempty"`
}

func (l LineItem) EntityID() string   { return strconv.FormatInt(l.ID, 10) }
func (l LineItem) EntityName() string { return l.Name }

type Placement struct {
	ID                int64    `xml:"id" json:"id"`
	Name              string   `xml:"name" json:"name"`
	Description       string   `xml:"description,omitempty" json:"description,omitempty"`
	PlacementCode     string   `xml:"placementCode,omitempty" json:"placementCode,omitempty"`
	Status            string   `xml:"status,omitempty" json:"status,omitempty"`
	TargetedAdUnitIDs []string `xml:"targetedAdUnitIds" json:"targetedAdUnitIds,omitempty"`
}

func (p Placement) EntityID() string   { return strconv.FormatInt(p.ID, 10) }
func (p Placement) EntityName() string { return p.Name }

type Role struct {
	ID          int64  `xml:"id" json:"id"`
	Name        string `xml:"name" json:"name"`
	Description string `xml:"description,omitempty" json:"description,omitempty"`
}

func (r Role) EntityID() string   { return strconv.FormatInt(r.ID, 10) }
func (r Role) EntityName() string { return r.Name }

type User struct {
	ID              int64  `xml:"id" json:"id"`
	Name            string `xml:"name" json:"name"`
	Email           string `xml:"email" json:"email"`
	RoleID          int64  `xml:"roleId" json:"roleId"`
	RoleName        string `xml:"roleName,omitempty" json:"roleName,omitempty"`
	PreferredLocale string `xml:"preferredLocale,omitempty" json:"preferredLocale,omitempty"`
	IsActive        bool   `xml:"isActive" json:"isActive"`
}

func (u User) EntityID() string   { return strconv.FormatInt(u.ID, 10) }
func (u User) EntityName() string { return u.Name }

type Network struct {
	ID                    int64  `xml:"id" json:"id"`
	DisplayName           string `xml:"displayName" json:"displayName"`
	NetworkCode           string `xml:"networkCode" json:"networkCode"`
	PropertyCode          string `xml:"propertyCode,omitempty" json:"propertyCode,omitempty"`
	TimeZone              string `xml:"timeZone,omitempty" json:"timeZone,omitempty"`
	CurrencyCode          string `xml:"currencyCode,omitempty" json:"currencyCode,omitempty"`
	EffectiveRootAdUnitID string `xml:"effectiveRootAdUnitId,omitempty" json:"effectiveRootAdUnitId,omitempty"`
	IsTest                bool   `xml:"isTest" json:"isTest"`
}

func (n Network) EntityID() string   { return n.NetworkCode }
func (n Network) EntityName() string { return n.DisplayName }

type SuggestedAdUnit struct {
	ID          string   `xml:"id" json:"id"`
	NumRequests int64    `xml:"numRequests" json:"numRequests"`
	Path        []string `xml:"path" json:"path,omitempty"`
}

func (s SuggestedAdUnit) EntityID() string { return s.ID }

// EntityName 用路径代替名字，例如 sports/football
func (s SuggestedAdUnit) EntityName() string {
	return strings.Join(s.Path, "/")
}

type Team struct {
	ID              int64  `xml:"id" json:"id"`
	Name            string `xml:"name" json:"name"`
	Description     string `xml:"description,omitempty" json:"description,omitempty"`
	HasAllCompanies bool   `xml:"hasAllCompanies" json:"hasAllCompanies"`
	HasAllInventory bool   `xml:"hasAllInventory" json:"hasAllInventory"`
	TeamAccessType  string `xml:"teamAccessType,omitempty" json:"teamAccessType,omitempty"`
}

func (t Team) EntityID() string   { return strconv.FormatInt(t.ID, 10) }
func (t Team) EntityName() string { return t.Name }
