package service

import (
	"github.com/coderi421/adkit/soap"
)

var (
	adUnitDesc               = Descriptor{Service: "InventoryService", Entity: "AdUnit", Plural: "AdUnits"}
	companyDesc              = Descriptor{Service: "CompanyService", Entity: "Company", Plural: "Companies"}
	creativeDesc             = Descriptor{Service: "CreativeService", Entity: "Creative", Plural: "Creatives"}
	creativeTemplateDesc     = Descriptor{Service: "CreativeTemplateService", Entity: "CreativeTemplate", Plural: "CreativeTemplates"}
	customTargetingKeyDesc   = Descriptor{Service: "CustomTargetingService", Entity: "CustomTargetingKey", Plural: "CustomTargetingKeys"}
	customTargetingValueDesc = Descriptor{Service: "CustomTargetingService", Entity: "CustomTargetingValue", Plural: "CustomTargetingValues"}
	labelDesc                = Descriptor{Service: "LabelService", Entity: "Label", Plural: "Labels"}
	licaDesc                 = Descriptor{Service: "LineItemCreativeAssociationService", Entity: "LineItemCreativeAssociation", Plural: "LineItemCreativeAssociations"}
	lineItemDesc             = Descriptor{Service: "LineItemService", Entity: "LineItem", Plural: "LineItems"}
	orderDesc                = Descriptor{Service: "OrderService", Entity: "Order", Plural: "Orders"}
	placementDesc            = Descriptor{Service: "PlacementService", Entity: "Placement", Plural: "Placements"}
	userDesc                 = Descriptor{Service: "UserService", Entity: "User", Plural: "Users"}
	suggestedAdUnitDesc      = Descriptor{Service: "SuggestedAdUnitService", Entity: "SuggestedAdUnit", Plural: "SuggestedAdUnits"}
	teamDesc                 = Descriptor{Service: "TeamService", Entity: "Team", Plural: "Teams"}
)

func AdUnits(c *soap.Client) *Service[AdUnit] {
	return New[AdUnit](c, adUnitDesc)
}

func Companies(c *soap.Client) *Service[Company] {
	return New[Company](c, companyDesc)
}

func Creatives(c *soap.Client) *Service[Creative] {
	return New[Creative](c, creativeDesc)
}

func CreativeTemplates(c *soap.Client) *Service[CreativeTemplate] {
	return New[CreativeTemplate](c, creativeTemplateDesc)
}

func CustomTargetingKeys(c *soap.Client) *Service[CustomTargetingKey] {
	return New[CustomTargetingKey](c, customTargetingKeyDesc)
}

func CustomTargetingValues(c *soap.Client) *Service[CustomTargetingValue] {
	return New[CustomTargetingValue](c, customTargetingValueDesc)
}

func Labels(c *soap.Client) *Service[Label] {
	return New[Label](c, labelDesc)
}

func LineItemCreativeAssociations(c *soap.Client) *Service[LineItemCreativeAssociation] {
	return New[LineItemCreativeAssociation](c, licaDesc)
}

func Orders(c *soap.Client) *Service[Order] {
	return New[Order](c, orderDesc)
}

func LineItems(c *soap.Client) *Service[LineItem] {
	return New[LineItem](c, lineItemDesc)
}

func Placements(c *soap.Client) *Service[Placement] {
	return New[Placement](c, placementDesc)
}

func Users(c *soap.Client) *Service[User] {
	return New[User](c, userDesc)
}

func SuggestedAdUnits(c *soap.Client) *Service[SuggestedAdUnit] {
	return New[SuggestedAdUnit](c, suggestedAdUnitDesc)
}

func Teams(c *soap.Client) *Service[Team] {
	return New[Team](c, teamDesc)
}
