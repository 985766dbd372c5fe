package headers

// Field is a canonical case field name.
type Field string

const (
	FieldNom                      Field = "nom"
	FieldPrenom                   Field = "prenom"
	FieldEmail                    Field = "email"
	FieldTelephone                Field = "telephone"
	FieldDateNaissance            Field = "dateNaissance"
	FieldGenre                    Field = "genre"
	FieldNationalite              Field = "nationalite"
	FieldTrancheAge               Field = "trancheAge"
	FieldStatutSejour             Field = "statutSejour"
	FieldLangue                   Field = "langue"
	FieldEtat                     Field = "etat"
	FieldDateOuverture            Field = "dateOuverture"
	FieldDateCloture              Field = "dateCloture"
	FieldGestionnaire             Field = "gestionnaire"
	FieldAntenne                  Field = "antenne"
	FieldPremierContact           Field = "premierContact"
	FieldRemarques                Field = "remarques"
	FieldNotesGenerales           Field = "notesGenerales"
	FieldInformationImportante    Field = "informationImportante"
	FieldSituationProfessionnelle Field = "situationProfessionnelle"
	FieldRevenus                  Field = "revenus"
	FieldRue                      Field = "adresse.rue"
	FieldNumero                   Field = "adresse.numero"
	FieldBoite                    Field = "adresse.boite"
	FieldCodePostal               Field = "adresse.codePostal"
	FieldVille                    Field = "adresse.ville"
	FieldPays                     Field = "adresse.pays"
	FieldSecteur                  Field = "secteur"
)

// DateFields are decoded through the date normalizer.
var DateFields = []Field{FieldDateNaissance, FieldDateOuverture, FieldDateCloture}

type aliasEntry struct {
	field   Field
	aliases []string
	// exclude rejects labels containing any of these folded fragments.
	exclude []string
}

var phoneFragments = []string{"tel", "gsm", "phone", "mobile", "portable"}

// Birthplace columns ("Lieu de naissance", "Ville de naissance") are neither
// a birth date nor the residential address.
var (
	birthplaceFragments = []string{"lieu", "ville", "pays", "commune", "city", "place"}
	birthFragments      = []string{"naissance", "birth"}
)

// aliasTable is consulted in order; earlier entries win ties.
var aliasTable = []aliasEntry{
	{field: FieldNom, aliases: []string{"nom", "name", "lastname", "last name", "nom de famille", "nom famille", "nom naissance", "surname"}},
	{field: FieldPrenom, aliases: []string{"prenom", "firstname", "first name", "prenom usuel", "given name"}},
	{field: FieldDateNaissance, aliases: []string{"date de naissance", "date naissance", "naissance", "birth date", "birthdate", "date of birth", "ddn", "dn", "d.n.", "ne le", "nee le", "date de nais."}, exclude: birthplaceFragments},
	{field: FieldEmail, aliases: []string{"email", "e mail", "mail", "courriel", "adresse mail", "adresse email", "mel"}},
	{field: FieldTelephone, aliases: []string{"telephone", "tel", "phone", "mobile", "portable", "gsm", "num gsm", "num tel", "numero telephone", "numero de telephone"}},
	{field: FieldGenre, aliases: []string{"genre", "sexe", "gender", "sex", "m/f", "civilite", "sexe usager"}},
	{field: FieldNationalite, aliases: []string{"nationalite", "pays d origine", "pays origine", "pays de naissance", "pays naissance", "origin country", "nationality"}},
	{field: FieldDateOuverture, aliases: []string{"date ouverture", "date d ouverture", "ouverture dossier", "ouverture", "date inscription", "inscrit le", "opening date", "dossier ouvert le", "date de reception"}},
	{field: FieldDateCloture, aliases: []string{"date cloture", "date de cloture", "cloture", "date de fin", "fin de suivi", "closing date", "fermeture"}},
	{field: FieldStatutSejour, aliases: []string{"statut sejour", "statut de sejour", "titre de sejour", "titre sejour", "sejour"}},
	{field: FieldEtat, aliases: []string{"etat", "statut", "status", "situation", "statut du dossier"}},
	{field: FieldTrancheAge, aliases: []string{"tranche d age", "tranche age", "categorie age", "age group"}},
	{field: FieldLangue, aliases: []string{"langue", "langue parlee", "language"}},
	{field: FieldPremierContact, aliases: []string{"premier contact", "origine contact", "first contact", "source", "origine"}},
	{field: FieldNotesGenerales, aliases: []string{"notes generales", "historique", "general notes", "notes detaillees"}},
	{field: FieldRemarques, aliases: []string{"remarques", "remarque", "commentaire", "commentaires", "observations", "notes", "remarks"}},
	{field: FieldInformationImportante, aliases: []string{"information importante", "info importante", "important"}},
	{field: FieldSituationProfessionnelle, aliases: []string{"situation professionnelle", "situation pro", "profession"}},
	{field: FieldRevenus, aliases: []string{"revenus", "revenu", "ressources", "income"}},
	{field: FieldGestionnaire, aliases: []string{"gestionnaire", "titulaire", "travailleur social", "assistant social"}},
	{field: FieldAntenne, aliases: []string{"antenne", "centre", "site", "structure", "etablissement", "pole"}, exclude: []string{"visite", "web"}},
	{field: FieldSecteur, aliases: []string{"secteur", "quartier", "sector", "district"}},
	{field: FieldCodePostal, aliases: []string{"code postal", "codepostal", "cp", "zip", "postal code"}},
	{field: FieldVille, aliases: []string{"ville", "city", "commune", "town", "localite"}, exclude: birthFragments},
	{field: FieldPays, aliases: []string{"pays", "country"}, exclude: birthFragments},
	{field: FieldNumero, aliases: []string{"n°", "numero", "num", "number", "numero maison"}, exclude: phoneFragments},
	{field: FieldBoite, aliases: []string{"boite", "bte", "box", "boite postale"}},
	{field: FieldRue, aliases: []string{"rue", "adresse", "address", "street", "adresse postale", "ligne adresse 1", "lieu de vie"}, exclude: []string{"mail", "numero", "n°"}},
}

// overrideKeys maps the flat keys of a saved column mapping to fields.
var overrideKeys = map[string]Field{
	"adresse":    FieldRue,
	"rue":        FieldRue,
	"numero":     FieldNumero,
	"boite":      FieldBoite,
	"codePostal": FieldCodePostal,
	"ville":      FieldVille,
	"pays":       FieldPays,
}

// FieldForKey resolves a column-mapping key to a field.
func FieldForKey(key string) (Field, bool) {
	if f, ok := overrideKeys[key]; ok {
		return f, true
	}
	for _, e := range aliasTable {
		if string(e.field) == key {
			return e.field, true
		}
	}
	return "", false
}
