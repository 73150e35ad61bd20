package model

import "github.com/google/uuid"

// movieNamespace seeds the deterministic ids of the built-in catalog.
var movieNamespace = uuid.MustParse("6f0b8e3a-4c1d-4f55-9a8e-2d7c1b9e0a11")

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Director describes a movie director.
type Director struct {
	Name  string `json:"name"`
	Birth string `json:"birth"`
}

// Movie is a catalog entry.
type Movie struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Year     string   `json:"year"`
	Genre    Genre    `json:"genre"`
	Director Director `json:"director"`
}

// MovieID derives the stable catalog id for a title.
func MovieID(title string) string {
	return uuid.NewSHA1(movieNamespace, []byte(title)).String()
}

var (
	genreWestern     = Genre{Name: "Western", Description: "Western films are a genre of movies that embody the spirit of the wild west and the grit of the American frontier."}
	genreCrime       = Genre{Name: "Crime", Description: "Crime films are a genre that focus on the lives of criminals, the crimes they commit, and the repercussions of these actions."}
	genreSuperhero   = Genre{Name: "Superhero", Description: "Superhero films are based on superhero comics, featuring characters with superhuman abilities and often complex moral dilemmas."}
	genreCrimeComedy = Genre{Name: "Crime Comedy", Description: "Crime comedies combine elements of humor with a criminal plot, often featuring criminals in quirky, improbable situations."}
	genreCrimeDrama  = Genre{Name: "Crime Drama", Description: "Crime dramas focus on the moral dilemmas and organized crime figures, often featuring complex characters and intricate plots."}
	genreFantasy     = Genre{Name: "Fantasy", Description: "Fantasy films are characterized by their imaginative and fantastical themes, often involving magic, mythical beings, and exotic fantasy worlds."}

	tarantino = Director{Name: "Quentin Tarantino", Birth: "1963"}
	jackson   = Director{Name: "Peter Jackson", Birth: "1961"}
)

// SeedMovies returns the built-in catalog used by the in-memory store.
func SeedMovies() []Movie {
	movies := []Movie{
		{Title: "The Hateful Eight", Year: "2015", Genre: genreWestern, Director: tarantino},
		{Title: "Pulp Fiction", Year: "1994", Genre: genreCrime, Director: tarantino},
		{Title: "Unbreakable", Year: "2000", Genre: genreSuperhero, Director: Director{Name: "M. Night Shyamalan", Birth: "1970"}},
		{Title: "Snatch", Year: "2000", Genre: genreCrimeComedy, Director: Director{Name: "Guy Ritchie", Birth: "1968"}},
		{Title: "The Dark Knight", Year: "2008", Genre: genreSuperhero, Director: Director{Name: "Christopher Nolan", Birth: "1970"}},
		{Title: "Django Unchained", Year: "2012", Genre: genreWestern, Director: tarantino},
		{Title: "The Godfather Part II", Year: "1974", Genre: genreCrimeDrama, Director: Director{Name: "Francis Ford Coppola", Birth: "1939"}},
		{Title: "Goodfellas", Year: "1990", Genre: genreCrimeDrama, Director: Director{Name: "Martin Scorsese", Birth: "1942"}},
		{Title: "The Lord of the Rings: The Fellowship of the Ring", Year: "2001", Genre: genreFantasy, Director: jackson},
		{Title: "The Lord of the Rings: The Two Towers", Year: "2002", Genre: genreFantasy, Director: jackson},
		{Title: "The Lord of the Rings: The Return of the King", Year: "2003", Genre: genreFantasy, Director: jackson},
	}
	for i := range movies {
		movies[i].ID = MovieID(movies[i].Title)
	}
	return movies
}
