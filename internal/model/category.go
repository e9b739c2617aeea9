package model

// Category groups products on the sales grid. Products reference it by name,
// not by id — no referential integrity is enforced, deleting a category
// leaves its products untouched.
type Category struct {
	ID    string `bson:"_id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Color string `bson:"color" json:"color"`
}

// Employee is a cashier identity used for shift attribution and display.
type Employee struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Username string `bson:"username" json:"username"`
}
