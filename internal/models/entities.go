package models

// City is a location a project can be assigned to.
type City struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	IsPublic bool   `db:"is_public" json:"isPublic"`
}

// Attribute is a feature tag (pool, gym, ...) referenced by projects and mega-projects.
type Attribute struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// MegaProject groups several projects under one development.
type MegaProject struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Address      string     `db:"address" json:"address"`
	Slogan       string     `db:"slogan" json:"slogan"`
	Description  string     `db:"description" json:"description"`
	AttributeIDs StringList `db:"attributes" json:"attributes"`
	Gallery      StringList `db:"gallery" json:"gallery"`
	Latitude     float64    `db:"latitude" json:"latitude"`
	Longitude    float64    `db:"longitude" json:"longitude"`
	IsPublic     bool       `db:"is_public" json:"isPublic"`
}

// Project is a commercial real-estate project keyed by its home key (hc).
// Gallery, UrbanPlans and the two minimum aggregates are written by a
// separate patch after the project's typologies have been synchronized.
type Project struct {
	HC                  string     `db:"hc" json:"hc"`
	Name                string     `db:"name" json:"name"`
	Slogan              string     `db:"slogan" json:"slogan"`
	Address             string     `db:"address" json:"address"`
	ShortDescription    string     `db:"small_description" json:"shortDescription"`
	LongDescription     string     `db:"long_description" json:"longDescription"`
	SIC                 string     `db:"sic" json:"sic"`
	SalaryMinimumCount  int        `db:"salary_minimum_count" json:"salaryMinimumCount"`
	DiscountDescription string     `db:"discount_description" json:"discountDescription"`
	PriceFromGeneral    float64    `db:"price_from_general" json:"priceFromGeneral"`
	PriceUpGeneral      float64    `db:"price_up_general" json:"priceUpGeneral"`
	Type                string     `db:"type" json:"type"`
	MegaProjectID       *string    `db:"mega_project_id" json:"megaProjectId"`
	Status              StringList `db:"status" json:"status"`
	Highlighted         bool       `db:"highlighted" json:"highlighted"`
	BuiltArea           float64    `db:"built_area" json:"builtArea"`
	PrivateArea         float64    `db:"private_area" json:"privateArea"`
	Rooms               int        `db:"rooms" json:"rooms"`
	Bathrooms           int        `db:"bathrooms" json:"bathrooms"`
	Latitude            float64    `db:"latitude" json:"latitude"`
	Longitude           float64    `db:"longitude" json:"longitude"`
	IsPublic            bool       `db:"is_public" json:"isPublic"`
	AttributeIDs        StringList `db:"attributes" json:"attributes"`
	City                *string    `db:"city" json:"city"`
	Gallery             StringList `db:"gallery" json:"gallery"`
	UrbanPlans          StringList `db:"urban_plans" json:"urbanPlans"`
	MinDeliveryTime     *int       `db:"min_delivery_time" json:"minDeliveryTime"`
	MinDeposit          *int       `db:"min_deposit" json:"minDeposit"`
}

// ProjectFiles is the partial update applied to a project once its files
// have been listed and its typologies aggregated.
type ProjectFiles struct {
	Gallery         StringList
	UrbanPlans      StringList
	MinDeliveryTime *int
	MinDeposit      *int
}

// Typology is a unit type offered within a project.
type Typology struct {
	ID             string     `db:"id" json:"id"`
	ProjectID      string     `db:"project_id" json:"projectId"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description" json:"description"`
	PriceFrom      float64    `db:"price_from" json:"priceFrom"`
	PriceUp        float64    `db:"price_up" json:"priceUp"`
	Rooms          int        `db:"rooms" json:"rooms"`
	Bathrooms      int        `db:"bathrooms" json:"bathrooms"`
	BuiltArea      float64    `db:"built_area" json:"builtArea"`
	PrivateArea    float64    `db:"private_area" json:"privateArea"`
	Plans          StringList `db:"plans" json:"plans"`
	Gallery        StringList `db:"gallery" json:"gallery"`
	MinSeparation  *int       `db:"min_separation" json:"minSeparation"`
	MinDeposit     *int       `db:"min_deposit" json:"minDeposit"`
	DeliveryTime   *int       `db:"delivery_time" json:"deliveryTime"`
	AvailableCount *int       `db:"available_count" json:"availableCount"`
}
