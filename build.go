package main

import (
	"fmt"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ecr"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-command/sdk/go/command/local"
	"github.com/pulumi/pulumi-docker/sdk/v4/go/docker"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const appDir = "cmd/app"

// appModuleFiles are copied into the image build next to appDir.
var appModuleFiles = []string{"go.mod", "go.sum"}

// Artifact is the deployable form of the handler, either a zip archive
// or a container image.
type Artifact struct {
	packageType string
	code        pulumi.Archive
	imageUri    pulumi.StringPtrInput
	image       *docker.Image
}

// apply sets the code fields of args for the artifact.
func (a *Artifact) apply(args *lambda.FunctionArgs) {
	args.PackageType = pulumi.String(a.packageType)
	if a.packageType == packageTypeImage {
		args.ImageUri = a.imageUri
		return
	}
	args.Code = a.code
	args.Handler = pulumi.String("bootstrap")
	args.Runtime = pulumi.String("provided.al2023")
}

func NewArtifact(ctx *pulumi.Context, cfg *Config) (*Artifact, error) {
	switch {
	case cfg.ImageUri != "":
		ctx.Log.Info(fmt.Sprintf("Using prebuilt image %s", cfg.ImageUri), nil)
		return &Artifact{packageType: packageTypeImage, imageUri: pulumi.String(cfg.ImageUri)}, nil
	case cfg.PackageType == packageTypeImage:
		return newImageArtifact(ctx, cfg)
	default:
		return newZipArtifact(ctx, cfg)
	}
}

func newZipArtifact(ctx *pulumi.Context, cfg *Config) (*Artifact, error) {
	_, err := local.Run(ctx, &local.RunArgs{
		Dir: pulumi.StringRef("."),
		Command: strings.Join([]string{
			"rm -rf asset && mkdir asset",
			fmt.Sprintf("CGO_ENABLED=0 GOOS=linux GOARCH=%s go build -mod=readonly -tags lambda.norpc -o ./asset/bootstrap ./%s", cfg.goarch(), appDir),
			"chmod +x ./asset/bootstrap",
		}, " && "),
		AssetPaths: []string{"asset/bootstrap"},
	})
	if err != nil {
		return nil, fmt.Errorf("Error running local command: %w", err)
	}

	return &Artifact{
		packageType: packageTypeZip,
		code:        pulumi.NewAssetArchive(map[string]interface{}{"bootstrap": pulumi.NewFileAsset("./asset/bootstrap")}),
	}, nil
}

func newImageArtifact(ctx *pulumi.Context, cfg *Config) (*Artifact, error) {
	// The tag changes with the sources and module files so the function
	// picks up new images.
	sourceHash, err := hashSources(appDir, appModuleFiles...)
	if err != nil {
		return nil, fmt.Errorf("Error hashing %s: %w", appDir, err)
	}

	repo, err := ecr.NewRepository(ctx, cfg.name("registry"), &ecr.RepositoryArgs{
		ForceDelete: pulumi.BoolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("Error creating repo: %w", err)
	}
	authToken := ecr.GetAuthorizationTokenOutput(ctx, ecr.GetAuthorizationTokenOutputArgs{
		RegistryId: repo.RegistryId,
	})
	image, err := docker.NewImage(ctx, cfg.name("lambda-image"), &docker.ImageArgs{
		Registry: docker.RegistryArgs{
			Username: authToken.UserName(),
			Password: pulumi.ToSecret(authToken.ApplyT(func(authToken ecr.GetAuthorizationTokenResult) (*string, error) {
				return &authToken.Password, nil
			})).(pulumi.StringPtrOutput),
		},
		Build: docker.DockerBuildArgs{
			Platform:   pulumi.String("linux/" + cfg.goarch()),
			Context:    pulumi.String("."),
			Dockerfile: pulumi.String(appDir + "/Dockerfile"),
		},
		ImageName: repo.RepositoryUrl.ApplyT(func(url string) string {
			return fmt.Sprintf("%s:%s", url, sourceHash[:12])
		}).(pulumi.StringOutput),
	})
	if err != nil {
		return nil, fmt.Errorf("Error building image: %w", err)
	}

	return &Artifact{
		packageType: packageTypeImage,
		imageUri:    image.RepoDigest,
		image:       image,
	}, nil
}
